// Package earth models the radial earth density profile and computes the
// ordered matter-layer sequence a neutrino trajectory crosses on its way to
// the detector.
package earth

import "errors"

// Sentinel errors, matched via errors.Is. Construction validates everything;
// after that no operation in this package can fail.
var (
	// ErrNoShells is returned when a model is built without shells.
	ErrNoShells = errors.New("earth: model has no shells")

	// ErrRadiiNotIncreasing is returned when shell radii are not strictly
	// increasing from center to surface, or the innermost radius is not
	// positive.
	ErrRadiiNotIncreasing = errors.New("earth: shell radii not strictly increasing")

	// ErrBadDensity is returned for a negative or non-finite shell density.
	ErrBadDensity = errors.New("earth: invalid shell density")

	// ErrBadElectronFraction is returned for an electron fraction outside [0, 1].
	ErrBadElectronFraction = errors.New("earth: electron fraction outside [0, 1]")

	// ErrNilModel is returned when a calculator is built without a model.
	ErrNilModel = errors.New("earth: model is nil")

	// ErrBadGeometry is returned for a negative production height, or a
	// detector depth that is negative or at least the surface radius.
	ErrBadGeometry = errors.New("earth: invalid detector geometry")
)

package earth

import (
	"fmt"
	"math"
)

// Shell is one concentric shell of the density model: everything between the
// previous shell's outer radius and this one has the given density and
// electron fraction.
type Shell struct {
	// OuterRadiusKm is the shell's outer radius from the earth's center.
	OuterRadiusKm float64

	// DensityGcc is the matter density in g/cm^3.
	DensityGcc float64

	// ElectronFraction is the electron-to-nucleon ratio Ye in [0, 1].
	ElectronFraction float64
}

// Model is a read-only radial earth density profile: concentric shells with
// strictly increasing radii, the last one being the surface.
type Model struct {
	shells []Shell
}

// NewModel validates and builds a density model from shells ordered
// center-out. It fails fast on an empty profile, non-increasing radii,
// negative or non-finite densities, or electron fractions outside [0, 1].
func NewModel(shells []Shell) (*Model, error) {
	if len(shells) == 0 {
		return nil, ErrNoShells
	}

	prev := 0.0
	for i, s := range shells {
		if !(s.OuterRadiusKm > prev) || math.IsInf(s.OuterRadiusKm, 0) {
			return nil, fmt.Errorf("%w: shell %d radius %v after %v", ErrRadiiNotIncreasing, i, s.OuterRadiusKm, prev)
		}
		if s.DensityGcc < 0 || math.IsNaN(s.DensityGcc) || math.IsInf(s.DensityGcc, 0) {
			return nil, fmt.Errorf("%w: shell %d density %v", ErrBadDensity, i, s.DensityGcc)
		}
		if s.ElectronFraction < 0 || s.ElectronFraction > 1 || math.IsNaN(s.ElectronFraction) {
			return nil, fmt.Errorf("%w: shell %d Ye %v", ErrBadElectronFraction, i, s.ElectronFraction)
		}
		prev = s.OuterRadiusKm
	}

	m := &Model{shells: make([]Shell, len(shells))}
	copy(m.shells, shells)
	return m, nil
}

// NumShells returns the number of shells.
func (m *Model) NumShells() int {
	return len(m.shells)
}

// SurfaceRadiusKm returns the outermost shell radius.
func (m *Model) SurfaceRadiusKm() float64 {
	return m.shells[len(m.shells)-1].OuterRadiusKm
}

// Shells returns a copy of the shell sequence, center-out.
func (m *Model) Shells() []Shell {
	out := make([]Shell, len(m.shells))
	copy(out, m.shells)
	return out
}

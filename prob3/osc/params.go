// Package osc implements three-flavor neutrino oscillation kernels: the PMNS
// mixing formalism in vacuum and through layered matter, following the
// Barger et al. analytic propagation used by prob3.
package osc

import (
	"math"
	"math/cmplx"

	"github.com/ajroetker/go-prob3/prob3/cmatrix"
)

// Flavor indexes the three neutrino flavors.
type Flavor int

const (
	NuE Flavor = iota
	NuMu
	NuTau
)

// String returns the flavor's short name.
func (f Flavor) String() string {
	switch f {
	case NuE:
		return "nue"
	case NuMu:
		return "numu"
	case NuTau:
		return "nutau"
	default:
		return "unknown"
	}
}

// Valid reports whether f is one of the three flavors.
func (f Flavor) Valid() bool {
	return f >= NuE && f <= NuTau
}

// NuType distinguishes neutrinos from antineutrinos.
type NuType int

const (
	Nu    NuType = 1
	NuBar NuType = -1
)

// Valid reports whether t is Nu or NuBar.
func (t NuType) Valid() bool {
	return t == Nu || t == NuBar
}

// massDegeneracyBreak separates exactly degenerate vacuum masses so the
// in-matter eigenvalue sort stays well defined.
const massDegeneracyBreak = 5.0e-9

// Params holds one immutable set of oscillation parameters, shared by every
// event of a computation pass. Updating parameters between passes means
// passing a new value; nothing here can change mid-pass.
type Params struct {
	// Theta12, Theta13, Theta23 are the mixing angles in radians.
	Theta12 float64
	Theta13 float64
	Theta23 float64

	// DeltaM21 and DeltaM31 are the mass-squared splittings in eV^2.
	DeltaM21 float64
	DeltaM31 float64

	// DeltaCP is the CP-violating phase in radians.
	DeltaCP float64
}

// MixMatrix builds the PMNS mixing matrix (flavor rows, mass columns) from
// the angles and CP phase.
func (p Params) MixMatrix() cmatrix.C3x3 {
	s12, c12 := math.Sincos(p.Theta12)
	s13, c13 := math.Sincos(p.Theta13)
	s23, c23 := math.Sincos(p.Theta23)

	eid := cmplx.Exp(complex(0, p.DeltaCP))   // e^{+i delta}
	emid := cmplx.Exp(complex(0, -p.DeltaCP)) // e^{-i delta}

	rc12 := complex(c12, 0)
	rs12 := complex(s12, 0)
	rc13 := complex(c13, 0)
	rs13 := complex(s13, 0)
	rc23 := complex(c23, 0)
	rs23 := complex(s23, 0)

	return cmatrix.C3x3{
		{
			rc12 * rc13,
			rs12 * rc13,
			rs13 * emid,
		},
		{
			-rs12*rc23 - rc12*rs23*rs13*eid,
			rc12*rc23 - rs12*rs23*rs13*eid,
			rs23 * rc13,
		},
		{
			rs12*rs23 - rc12*rc23*rs13*eid,
			-rc12*rs23 - rs12*rc23*rs13*eid,
			rc23 * rc13,
		},
	}
}

// MassSplittings builds the antisymmetric matrix of vacuum mass-squared
// differences, dm[i][j] = m_i^2 - m_j^2 in eV^2, with exact degeneracies
// broken by a tiny offset.
func (p Params) MassSplittings() cmatrix.R3x3 {
	m := [3]float64{0, p.DeltaM21, p.DeltaM31}
	if p.DeltaM21 == 0 {
		m[0] -= massDegeneracyBreak
	}
	if p.DeltaM31 == p.DeltaM21 || p.DeltaM31 == 0 {
		m[2] += massDegeneracyBreak
	}

	var dm cmatrix.R3x3
	for i := range dm {
		for j := range dm[i] {
			dm[i][j] = m[i] - m[j]
		}
	}
	return dm
}

package earth

import (
	"fmt"
	"math"
)

// Geometry fixes the detector position and the neutrino production height.
// Both are explicit configuration rather than package constants so different
// detectors can share one density model.
type Geometry struct {
	// DetectorDepthKm is the detector's depth below the surface.
	DetectorDepthKm float64

	// PropHeightKm is the production height above the surface where
	// atmospheric neutrinos are born.
	PropHeightKm float64
}

// Calculator turns a zenith cosine into the ordered (density, distance)
// layer profile of the matter traversed. Profiles depend only on geometry,
// never on oscillation parameters, so they are computed once per event at
// load time and reused across every parameter-update pass.
//
// Layer densities are electron-weighted: each shell contributes its matter
// density multiplied by its electron fraction, which is the quantity the
// matter Hamiltonian consumes.
type Calculator struct {
	shells      []Shell
	geo         Geometry
	rSurface    float64
	rDetector   float64
	rProduction float64
}

// NewCalculator validates the geometry against the model and builds a
// calculator.
func NewCalculator(m *Model, geo Geometry) (*Calculator, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	surface := m.SurfaceRadiusKm()
	if geo.DetectorDepthKm < 0 || geo.DetectorDepthKm >= surface {
		return nil, fmt.Errorf("%w: detector depth %v km", ErrBadGeometry, geo.DetectorDepthKm)
	}
	if geo.PropHeightKm < 0 {
		return nil, fmt.Errorf("%w: production height %v km", ErrBadGeometry, geo.PropHeightKm)
	}

	return &Calculator{
		shells:      m.Shells(),
		geo:         geo,
		rSurface:    surface,
		rDetector:   surface - geo.DetectorDepthKm,
		rProduction: surface + geo.PropHeightKm,
	}, nil
}

// MaxLayers bounds the layer count of any profile: one atmosphere entry plus
// at most two traversals per shell.
func (c *Calculator) MaxLayers() int {
	return 2*len(c.shells) + 1
}

// PathLength returns the total trajectory length in km from the production
// point to the detector for the given zenith cosine.
func (c *Calculator) PathLength(coszen float64) float64 {
	if coszen < 0 {
		return math.Sqrt(c.rProduction*c.rProduction-
			c.rDetector*c.rDetector*(1-coszen*coszen)) - c.rDetector*coszen
	}
	kappa := (c.geo.DetectorDepthKm + c.geo.PropHeightKm) / c.rDetector
	return c.rDetector * (math.Sqrt(coszen*coszen-1+(1+kappa)*(1+kappa)) - coszen)
}

// FillProfile writes the layer profile for one zenith cosine into density
// and distance, which must each hold at least MaxLayers elements, and
// returns the number of valid layers. Layers appear in trajectory order
// (production side first); consecutive traversals of equal density are
// coalesced; zero-length traversals are dropped. The distances always sum
// to PathLength(coszen).
//
// A non-earth-crossing trajectory (coszen >= 0) yields a single vacuum layer
// holding the full path length.
func (c *Calculator) FillProfile(coszen float64, density, distance []float64) int {
	total := c.PathLength(coszen)

	if coszen >= 0 {
		density[0] = 0
		distance[0] = total
		return 1
	}

	// Impact parameter of the trajectory through the detector, and the
	// distance from the point of closest approach to the detector. The
	// trajectory ends at the detector radius, not at the surface.
	b2 := c.rDetector * c.rDetector * (1 - coszen*coszen)
	sDetector := -c.rDetector * coszen

	// Half-chord from the closest-approach point out to radius r.
	half := func(r float64) float64 {
		return math.Sqrt(r*r - b2)
	}

	n := 0
	push := func(rho, dist float64) {
		if dist <= 0 {
			return
		}
		if n > 0 && density[n-1] == rho {
			distance[n-1] += dist
			return
		}
		density[n] = rho
		distance[n] = dist
		n++
	}

	// Atmosphere from the production point to the surface entry.
	push(0, total-half(c.rSurface)-sDetector)

	// Innermost shell the trajectory reaches.
	inner := len(c.shells) - 1
	for inner > 0 && c.shells[inner-1].OuterRadiusKm*c.shells[inner-1].OuterRadiusKm > b2 {
		inner--
	}

	rho := func(i int) float64 {
		return c.shells[i].DensityGcc * c.shells[i].ElectronFraction
	}

	// Descending traversals, surface shell inward to the closest approach.
	for i := len(c.shells) - 1; i > inner; i-- {
		push(rho(i), half(c.shells[i].OuterRadiusKm)-half(c.shells[i-1].OuterRadiusKm))
	}
	push(rho(inner), half(c.shells[inner].OuterRadiusKm))

	// Ascending traversals, clipped at the detector. The segment bounds
	// telescope, so the distances sum to the path length exactly.
	prev := 0.0
	for i := inner; i < len(c.shells); i++ {
		s := math.Min(half(c.shells[i].OuterRadiusKm), sDetector)
		push(rho(i), s-prev)
		prev = s
	}

	return n
}

// Profile is the allocating convenience form of FillProfile.
func (c *Calculator) Profile(coszen float64) (density, distance []float64) {
	density = make([]float64, c.MaxLayers())
	distance = make([]float64, c.MaxLayers())
	n := c.FillProfile(coszen, density, distance)
	return density[:n], distance[:n]
}

package earth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func twoShellModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel([]Shell{
		{OuterRadiusKm: 3480, DensityGcc: 13, ElectronFraction: 1},
		{OuterRadiusKm: 6371, DensityGcc: 4, ElectronFraction: 1},
	})
	require.NoError(t, err)
	return m
}

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name    string
		shells  []Shell
		wantErr error
	}{
		{
			name:    "empty",
			wantErr: ErrNoShells,
		},
		{
			name: "non increasing radii",
			shells: []Shell{
				{OuterRadiusKm: 3480, DensityGcc: 13, ElectronFraction: 0.5},
				{OuterRadiusKm: 3480, DensityGcc: 4, ElectronFraction: 0.5},
			},
			wantErr: ErrRadiiNotIncreasing,
		},
		{
			name:    "zero first radius",
			shells:  []Shell{{OuterRadiusKm: 0, DensityGcc: 1, ElectronFraction: 0.5}},
			wantErr: ErrRadiiNotIncreasing,
		},
		{
			name:    "negative density",
			shells:  []Shell{{OuterRadiusKm: 6371, DensityGcc: -1, ElectronFraction: 0.5}},
			wantErr: ErrBadDensity,
		},
		{
			name:    "electron fraction above one",
			shells:  []Shell{{OuterRadiusKm: 6371, DensityGcc: 4, ElectronFraction: 1.5}},
			wantErr: ErrBadElectronFraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.shells)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewCalculatorValidation(t *testing.T) {
	m := twoShellModel(t)

	_, err := NewCalculator(nil, Geometry{})
	require.ErrorIs(t, err, ErrNilModel)

	_, err = NewCalculator(m, Geometry{DetectorDepthKm: -1})
	require.ErrorIs(t, err, ErrBadGeometry)

	_, err = NewCalculator(m, Geometry{DetectorDepthKm: 7000})
	require.ErrorIs(t, err, ErrBadGeometry)

	_, err = NewCalculator(m, Geometry{PropHeightKm: -5})
	require.ErrorIs(t, err, ErrBadGeometry)
}

func TestProfileThroughCenter(t *testing.T) {
	// Straight up through the center: mantle, core, mantle, path 2*R_surface.
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{})
	require.NoError(t, err)

	density, distance := calc.Profile(-1)
	require.Len(t, distance, 3)

	require.Equal(t, []float64{4, 13, 4}, density)

	r1, r2 := 3480.0, 6371.0
	require.InDelta(t, r2-r1, distance[0], 1e-9)
	require.InDelta(t, 2*r1, distance[1], 1e-9)
	require.InDelta(t, r2-r1, distance[2], 1e-9)

	var sum float64
	for _, d := range distance {
		sum += d
	}
	require.InDelta(t, 2*r2, sum, 1e-9)
}

func TestProfileDowngoing(t *testing.T) {
	// Non-earth-crossing: a single vacuum layer carrying the full path.
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{DetectorDepthKm: 2, PropHeightKm: 20})
	require.NoError(t, err)

	for _, cz := range []float64{0, 0.3, 1} {
		density, distance := calc.Profile(cz)
		require.Lenf(t, distance, 1, "coszen %v", cz)
		require.Equal(t, 0.0, density[0])
		require.InDelta(t, calc.PathLength(cz), distance[0], 1e-9)
	}
}

func TestProfileDistancesSumToPathLength(t *testing.T) {
	m, err := NewModel([]Shell{
		{OuterRadiusKm: 1221.5, DensityGcc: 13.0, ElectronFraction: 0.4656},
		{OuterRadiusKm: 3480.0, DensityGcc: 11.3, ElectronFraction: 0.4656},
		{OuterRadiusKm: 5701.0, DensityGcc: 5.0, ElectronFraction: 0.4957},
		{OuterRadiusKm: 6371.0, DensityGcc: 3.3, ElectronFraction: 0.4957},
	})
	require.NoError(t, err)

	geometries := []Geometry{
		{},
		{DetectorDepthKm: 2, PropHeightKm: 20},
		{DetectorDepthKm: 2, PropHeightKm: 0},
		{DetectorDepthKm: 10, PropHeightKm: 5},
		{DetectorDepthKm: 500, PropHeightKm: 20},
	}

	for _, geo := range geometries {
		calc, err := NewCalculator(m, geo)
		require.NoError(t, err)

		for cz := -1.0; cz <= 1.0; cz += 0.05 {
			_, distance := calc.Profile(cz)
			require.LessOrEqual(t, len(distance), calc.MaxLayers())

			var sum float64
			for _, d := range distance {
				sum += d
			}
			require.InDeltaf(t, calc.PathLength(cz), sum, 1e-6,
				"geometry %+v coszen %v", geo, cz)
		}
	}
}

func TestProfileDetectorBelowProduction(t *testing.T) {
	// A detector deeper than the production height ends the trajectory
	// underground: the last traversal stops at the detector radius instead
	// of mirroring all the way back to the surface.
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{DetectorDepthKm: 2, PropHeightKm: 0})
	require.NoError(t, err)

	density, distance := calc.Profile(-1)
	require.Equal(t, []float64{4, 13, 4}, density)

	var sum float64
	for _, d := range distance {
		sum += d
	}
	require.InDelta(t, calc.PathLength(-1), sum, 1e-9)
	require.InDelta(t, 2*6371-2, sum, 1e-9)
	// Final mantle leg is shortened by the detector depth.
	require.InDelta(t, 6371-3480-2, distance[2], 1e-9)
}

func TestProfileThroughCenterDeepDetector(t *testing.T) {
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{DetectorDepthKm: 2, PropHeightKm: 20})
	require.NoError(t, err)

	density, distance := calc.Profile(-1)
	require.Equal(t, []float64{0, 4, 13, 4}, density)

	r1, r2 := 3480.0, 6371.0
	require.InDelta(t, 20, distance[0], 1e-9)
	require.InDelta(t, r2-r1, distance[1], 1e-9)
	require.InDelta(t, 2*r1, distance[2], 1e-9)
	require.InDelta(t, r2-r1-2, distance[3], 1e-9)
}

func TestProfileCoalescesEqualDensities(t *testing.T) {
	// Two adjacent shells with identical density and Ye merge into one layer.
	m, err := NewModel([]Shell{
		{OuterRadiusKm: 2000, DensityGcc: 10, ElectronFraction: 0.5},
		{OuterRadiusKm: 4000, DensityGcc: 5, ElectronFraction: 0.5},
		{OuterRadiusKm: 6371, DensityGcc: 5, ElectronFraction: 0.5},
	})
	require.NoError(t, err)

	calc, err := NewCalculator(m, Geometry{})
	require.NoError(t, err)

	density, distance := calc.Profile(-1)
	// mantle (merged), core, mantle (merged)
	require.Len(t, distance, 3)
	require.Equal(t, []float64{2.5, 5, 2.5}, density)
	require.InDelta(t, 6371-2000, distance[0], 1e-9)
}

func TestProfileShallowChord(t *testing.T) {
	// Slightly upgoing: only the outermost shell is grazed.
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{PropHeightKm: 20})
	require.NoError(t, err)

	density, distance := calc.Profile(-0.01)
	require.Len(t, distance, 2)
	require.Equal(t, 0.0, density[0])   // atmosphere
	require.Equal(t, 4.0, density[1])   // surface shell only
	require.Greater(t, distance[1], 0.0)
	require.InDelta(t, 2*0.01*6371, distance[1], 1e-9)
}

func TestPathLengthContinuity(t *testing.T) {
	// The two branches of the path formula must agree at the horizon.
	m := twoShellModel(t)
	calc, err := NewCalculator(m, Geometry{DetectorDepthKm: 2, PropHeightKm: 20})
	require.NoError(t, err)

	below := calc.PathLength(-1e-12)
	above := calc.PathLength(0)
	require.InDelta(t, above, below, 1e-3)
	require.False(t, math.IsNaN(below))
}

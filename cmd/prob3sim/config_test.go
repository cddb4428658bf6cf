package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-prob3/prob3"
	"github.com/ajroetker/go-prob3/prob3/pipeline"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "", cfg.Run.Target)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Len(t, cfg.Earth.Shells, 4)
	assert.Equal(t, 6371.0, cfg.Earth.Shells[3].OuterRadiusKm)
	assert.Equal(t, 50000, cfg.Events.PerFlavor)
	assert.Equal(t, pipeline.PolicyCount, cfg.Policy())

	model, err := cfg.Model()
	require.NoError(t, err)
	assert.Equal(t, 4, model.NumShells())

	cz, en, err := cfg.Axes()
	require.NoError(t, err)
	assert.Equal(t, 20, cz.NumBins())
	assert.Equal(t, 40, en.NumBins())
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	target, err := cfg.Target()
	require.NoError(t, err)
	assert.Equal(t, prob3.TargetSequential, target)
	assert.Equal(t, 2, cfg.Run.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1.5, cfg.Geometry.DetectorDepthKm)
	assert.Len(t, cfg.Earth.Shells, 2)
	assert.Equal(t, 1000, cfg.Events.PerFlavor)
	assert.Equal(t, int64(7), cfg.Events.Seed)
	assert.Equal(t, pipeline.PolicyAbort, cfg.Policy())

	params := cfg.Params()
	assert.Equal(t, 0.84, params.Theta23)
	assert.Equal(t, 2.5e-3, params.DeltaM31)

	cz, en, err := cfg.Axes()
	require.NoError(t, err)
	assert.Equal(t, 8, cz.NumBins())
	assert.Equal(t, 0.0, cz.Hi(), "upgoing-only grid")
	assert.Equal(t, 16, en.NumBins())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base(t)
	cfg.Run.Target = "gpu"
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Run.Workers = -1
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Earth.Shells = nil
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Binning.Energy.Bins = 0
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Binning.Coszen.Hi = cfg.Binning.Coszen.Lo
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Events.PerFlavor = 0
	assert.Error(t, cfg.Validate())

	cfg = base(t)
	cfg.Invariants.Policy = "panic"
	assert.Error(t, cfg.Validate())
}

func TestSyntheticEventsDeterministic(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	gen := func() pipeline.Arrays {
		rng := newSeededRand(cfg.Events.Seed)
		return syntheticEvents(rng, 100, energyRange(cfg))
	}
	a := gen()
	b := gen()
	assert.Equal(t, a, b, "same seed must reproduce the event set")

	span := energyRange(cfg)
	for i := range a.TrueEnergy {
		assert.GreaterOrEqual(t, a.TrueEnergy[i], span.lo)
		assert.LessOrEqual(t, a.TrueEnergy[i], span.hi)
		assert.GreaterOrEqual(t, a.TrueCoszen[i], -1.0)
		assert.LessOrEqual(t, a.TrueCoszen[i], 1.0)
		assert.Greater(t, a.FluxNuE[i], 0.0)
		assert.Greater(t, a.EffArea[i], 0.0)
	}
}

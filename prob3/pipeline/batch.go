// Package pipeline wires the earth model, the oscillation kernels, the
// weighting rule and the histogram accumulators into one batch orchestrator
// that re-weights Monte Carlo event sets for successive parameter points.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-prob3/prob3/osc"
)

var (
	// ErrEmptyBatch is returned for a batch with no events.
	ErrEmptyBatch = errors.New("pipeline: batch has no events")

	// ErrLengthMismatch is returned when the input columns disagree on the
	// event count.
	ErrLengthMismatch = errors.New("pipeline: input columns have mismatched lengths")

	// ErrBadFlavor is returned for an observed flavor outside nue/numu/nutau.
	ErrBadFlavor = errors.New("pipeline: invalid observed flavor")

	// ErrBadNuType is returned for a neutrino type other than Nu or NuBar.
	ErrBadNuType = errors.New("pipeline: invalid neutrino type")
)

// Arrays holds the seven aligned per-event input columns of one Monte Carlo
// event set. All columns must have the same length.
type Arrays struct {
	// TrueEnergy is the generated neutrino energy in GeV; TrueCoszen the
	// generated zenith cosine. Both drive the oscillation calculation.
	TrueEnergy []float64
	TrueCoszen []float64

	// RecoEnergy and RecoCoszen are the reconstructed observables that
	// place the event on the analysis grid.
	RecoEnergy []float64
	RecoCoszen []float64

	// FluxNuE and FluxNuMu are the unoscillated atmospheric fluxes at the
	// event's true energy and direction.
	FluxNuE  []float64
	FluxNuMu []float64

	// EffArea is the detector's effective area (times livetime) for the
	// event, the Monte Carlo normalization.
	EffArea []float64
}

func (a Arrays) lens() [7]int {
	return [7]int{
		len(a.TrueEnergy), len(a.TrueCoszen),
		len(a.RecoEnergy), len(a.RecoCoszen),
		len(a.FluxNuE), len(a.FluxNuMu), len(a.EffArea),
	}
}

// Batch binds one event set to its observed flavor and neutrino type, and
// owns the derived per-event buffers: the layer profile block (computed once
// per batch, reused across parameter passes), the extracted probabilities
// and the weights.
type Batch struct {
	name   string
	flavor osc.Flavor
	nuType osc.NuType
	in     Arrays
	n      int

	// Derived buffers, allocated when the batch joins a pipeline. The
	// profile block is strided: event i owns [i*maxLayers, (i+1)*maxLayers).
	maxLayers int
	density   []float64
	distance  []float64
	numLayers []int
	probE     []float64
	probMu    []float64
	weights   []float64
}

// NewBatch validates and wraps one event set. flavor is the observed flavor
// of every event in the set, nuType whether they are neutrinos or
// antineutrinos.
func NewBatch(name string, flavor osc.Flavor, nuType osc.NuType, in Arrays) (*Batch, error) {
	if !flavor.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadFlavor, flavor)
	}
	if !nuType.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadNuType, nuType)
	}

	lens := in.lens()
	n := lens[0]
	for i, l := range lens {
		if l != n {
			return nil, fmt.Errorf("%w: column %d has %d events, want %d",
				ErrLengthMismatch, i, l, n)
		}
	}
	if n == 0 {
		return nil, ErrEmptyBatch
	}

	return &Batch{
		name:   name,
		flavor: flavor,
		nuType: nuType,
		in:     in,
		n:      n,
	}, nil
}

// Name returns the batch's identifier, used as the histogram key.
func (b *Batch) Name() string { return b.name }

// Flavor returns the observed flavor of the batch's events.
func (b *Batch) Flavor() osc.Flavor { return b.flavor }

// NuType returns whether the batch holds neutrinos or antineutrinos.
func (b *Batch) NuType() osc.NuType { return b.nuType }

// Len returns the event count.
func (b *Batch) Len() int { return b.n }

// Weights returns a copy of the per-event weights from the most recent run;
// nil before the first run.
func (b *Batch) Weights() []float64 {
	if b.weights == nil {
		return nil
	}
	cp := make([]float64, len(b.weights))
	copy(cp, b.weights)
	return cp
}

// allocDerived sizes the derived buffers for a pipeline whose earth model
// produces at most maxLayers layers per event.
func (b *Batch) allocDerived(maxLayers int) {
	b.maxLayers = maxLayers
	b.density = make([]float64, b.n*maxLayers)
	b.distance = make([]float64, b.n*maxLayers)
	b.numLayers = make([]int, b.n)
	b.probE = make([]float64, b.n)
	b.probMu = make([]float64, b.n)
	b.weights = make([]float64, b.n)
}

// profileBlock returns event i's private slice of the strided layer block.
func (b *Batch) profileBlock(i int) (density, distance []float64) {
	off := i * b.maxLayers
	return b.density[off : off+b.maxLayers], b.distance[off : off+b.maxLayers]
}

package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ajroetker/go-prob3/internal/logger"
	"github.com/ajroetker/go-prob3/prob3"
	"github.com/ajroetker/go-prob3/prob3/cmatrix"
	"github.com/ajroetker/go-prob3/prob3/earth"
	"github.com/ajroetker/go-prob3/prob3/hist"
	"github.com/ajroetker/go-prob3/prob3/osc"
	"github.com/ajroetker/go-prob3/prob3/weight"
)

var (
	// ErrNilAxis is returned when a histogram axis is missing.
	ErrNilAxis = errors.New("pipeline: both histogram axes are required")

	// ErrNilBatch is returned when a nil batch is added.
	ErrNilBatch = errors.New("pipeline: nil batch")

	// ErrProbabilityInvariant is returned under PolicyAbort when a
	// probability row fails to sum to one within the tolerance.
	ErrProbabilityInvariant = errors.New("pipeline: probability rows must sum to 1")
)

// DefaultTolerance bounds |sum(row) - 1| of every probability row before an
// event counts as a violation.
const DefaultTolerance = 1e-6

// Policy decides what a probability-invariant violation does to a run.
type Policy int

const (
	// PolicyCount records violations in the result and keeps going.
	PolicyCount Policy = iota

	// PolicyAbort stops the run with an error after the offending batch.
	PolicyAbort
)

// Violation describes one probability row that failed the unitarity check.
type Violation struct {
	Batch  string
	Event  int
	Row    osc.Flavor
	RowSum float64
}

func (v Violation) String() string {
	return fmt.Sprintf("batch %q event %d row %s sums to %.9g",
		v.Batch, v.Event, v.Row, v.RowSum)
}

// Config collects everything a Pipeline needs up front.
type Config struct {
	// Target selects the execution engine; Workers the lane count for the
	// parallel target (0 means GOMAXPROCS).
	Target  prob3.Target
	Workers int

	// Model and Geometry define the matter traversal.
	Model    *earth.Model
	Geometry earth.Geometry

	// CoszenAxis and EnergyAxis define the analysis grid every batch is
	// histogrammed on, in reconstructed observables.
	CoszenAxis *hist.Axis
	EnergyAxis *hist.Axis

	// NSI enables non-standard interactions; nil means standard
	// oscillations.
	NSI *cmatrix.C3x3

	// Policy and Tolerance control the probability-invariant check;
	// Tolerance 0 means DefaultTolerance.
	Policy    Policy
	Tolerance float64

	// Log receives per-pass diagnostics; nil discards them.
	Log *logger.Logger
}

// Result reports one parameter pass over every batch.
type Result struct {
	// Hists maps batch name to its filled (coszen, energy) histogram.
	Hists map[string]*hist.Hist2D

	// Dropped counts events across all batches whose reconstructed
	// observables fell outside the analysis grid.
	Dropped uint64

	// Violations counts probability rows that failed the unitarity check;
	// First is the lowest-indexed example from the earliest violating
	// batch, nil when clean.
	Violations uint64
	First      *Violation
}

// Pipeline owns the engine, the layer calculator and the registered batches.
// Batches join once; Run may be called repeatedly with different mixing
// parameters, which is the whole point: the expensive geometry is computed
// once per batch and only the oscillation pass repeats.
type Pipeline struct {
	engine    *prob3.Engine
	calc      *earth.Calculator
	coszen    *hist.Axis
	energy    *hist.Axis
	nsi       *cmatrix.C3x3
	policy    Policy
	tolerance float64
	log       *logger.Logger
	batches   []*Batch
}

// New validates cfg and builds the pipeline. Everything that can fail does
// so here: the earth model, the geometry, the axes and the engine's scratch
// budget.
func New(cfg Config) (*Pipeline, error) {
	if cfg.CoszenAxis == nil || cfg.EnergyAxis == nil {
		return nil, ErrNilAxis
	}

	calc, err := earth.NewCalculator(cfg.Model, cfg.Geometry)
	if err != nil {
		return nil, err
	}

	engine, err := prob3.NewEngine(cfg.Target, osc.ScratchSpec(calc.MaxLayers()),
		prob3.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}

	tol := cfg.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	log.Info("pipeline ready: target=%s lanes=%d maxLayers=%d hardware=%s",
		cfg.Target, engine.Lanes(), calc.MaxLayers(), prob3.HardwareName())

	return &Pipeline{
		engine:    engine,
		calc:      calc,
		coszen:    cfg.CoszenAxis,
		energy:    cfg.EnergyAxis,
		nsi:       cfg.NSI,
		policy:    cfg.Policy,
		tolerance: tol,
		log:       log,
		batches:   nil,
	}, nil
}

// Close releases the engine's workers. A closed pipeline still runs, one
// event at a time.
func (p *Pipeline) Close() {
	p.engine.Close()
}

// NumBatches returns the number of registered batches.
func (p *Pipeline) NumBatches() int { return len(p.batches) }

// AddBatch registers a batch and computes its layer profiles. Profiles
// depend only on geometry, never on mixing parameters, so this runs once per
// batch no matter how many parameter passes follow.
func (p *Pipeline) AddBatch(b *Batch) error {
	if b == nil {
		return ErrNilBatch
	}

	b.allocDerived(p.calc.MaxLayers())
	p.engine.ForEach(b.n, func(ws *prob3.Workspace, i int) {
		density, distance := b.profileBlock(i)
		b.numLayers[i] = p.calc.FillProfile(b.in.TrueCoszen[i], density, distance)
	})

	p.batches = append(p.batches, b)
	p.log.Debug("batch %q added: %d events, flavor=%s", b.name, b.n, b.flavor)
	return nil
}

// Run executes one parameter pass: for every batch, per event, probabilities
// then weight then histogram fill. Per-event weights are bitwise identical
// across targets; histogram cell totals can differ by summation order only.
//
// Under PolicyAbort the first batch with a violation ends the pass; the
// returned Result still covers the batches processed so far.
func (p *Pipeline) Run(params osc.Params) (*Result, error) {
	start := time.Now()
	dm := params.MassSplittings()
	mix := params.MixMatrix()

	res := &Result{Hists: make(map[string]*hist.Hist2D, len(p.batches))}

	for _, b := range p.batches {
		h := hist.NewHist2D(p.coszen, p.energy)
		res.Hists[b.name] = h
		before := res.Violations

		// Violations are tracked per batch so the logged example belongs
		// to the batch being reported; lanes race, so the lowest event
		// index wins to keep the pick deterministic.
		var mu sync.Mutex
		var first *Violation
		recordViolation := func(v Violation) {
			mu.Lock()
			defer mu.Unlock()
			res.Violations++
			if first == nil || v.Event < first.Event {
				first = &v
			}
		}

		p.engine.ForEach(b.n, func(ws *prob3.Workspace, i int) {
			density, distance := b.profileBlock(i)
			nl := b.numLayers[i]

			var probs cmatrix.R3x3
			osc.Propagate(ws, osc.MatterIn{
				DM:        &dm,
				Mix:       &mix,
				NSI:       p.nsi,
				NuType:    b.nuType,
				EnergyGeV: b.in.TrueEnergy[i],
				Density:   density[:nl],
				Distance:  distance[:nl],
			}, &probs)

			for row := 0; row < 3; row++ {
				sum := probs[row][0] + probs[row][1] + probs[row][2]
				if diff := sum - 1; diff > p.tolerance || diff < -p.tolerance {
					recordViolation(Violation{
						Batch:  b.name,
						Event:  i,
						Row:    osc.Flavor(row),
						RowSum: sum,
					})
				}
			}

			b.probE[i] = probs[osc.NuE][b.flavor]
			b.probMu[i] = probs[osc.NuMu][b.flavor]
			b.weights[i] = weight.Event(
				b.probE[i], b.probMu[i],
				b.in.FluxNuE[i], b.in.FluxNuMu[i], b.in.EffArea[i])

			h.Fill(b.in.RecoCoszen[i], b.in.RecoEnergy[i], b.weights[i])
		})

		res.Dropped += h.Dropped()
		if first != nil {
			if res.First == nil {
				res.First = first
			}
			p.log.Warn("batch %q: %d probability rows off unity, first: %s",
				b.name, res.Violations-before, first)
			if p.policy == PolicyAbort {
				return res, fmt.Errorf("%w: %s", ErrProbabilityInvariant, first)
			}
		}
	}

	p.log.Info("pass complete: %d batches, dropped=%d, violations=%d, took %v",
		len(p.batches), res.Dropped, res.Violations, time.Since(start).Round(time.Microsecond))
	return res, nil
}

package prob3

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ajroetker/go-prob3/prob3/workerpool"
)

var (
	// ErrBadScratchSpec is returned for a spec with negative fields.
	ErrBadScratchSpec = errors.New("prob3: invalid scratch spec")

	// ErrScratchBudget is returned when a kernel's declared per-lane scratch
	// exceeds what the parallel target allows.
	ErrScratchBudget = errors.New("prob3: scratch spec exceeds parallel per-lane budget")

	// ErrBadWorkers is returned for a negative worker count.
	ErrBadWorkers = errors.New("prob3: invalid worker count")
)

// maxParallelScratchBytes bounds the per-lane scratch under the parallel
// target, mirroring the fixed per-thread local memory of an accelerator.
const maxParallelScratchBytes = 256 << 10

// Kernel is a per-event unit of work. It may only touch event index i of any
// shared arrays plus the scratch in ws; this keeps events independent under
// both targets.
type Kernel func(ws *Workspace, i int)

// Engine runs kernels across event batches under a fixed execution target.
// Construction validates everything that can fail, so a successfully built
// Engine never fails mid-batch.
type Engine struct {
	target Target
	pool   *workerpool.Pool
	lanes  []*Workspace
}

// Option configures an Engine.
type Option func(*engineOpts)

type engineOpts struct {
	workers int
}

// WithWorkers sets the worker (lane) count for the parallel target.
// Zero means GOMAXPROCS. Ignored by the sequential target.
func WithWorkers(n int) Option {
	return func(o *engineOpts) {
		o.workers = n
	}
}

// NewEngine builds an engine for the requested target and kernel scratch
// requirement. It fails fast: an unknown target, an invalid spec, a negative
// worker count, or a spec exceeding the parallel per-lane scratch budget are
// all construction-time errors.
func NewEngine(target Target, spec ScratchSpec, opts ...Option) (*Engine, error) {
	var o engineOpts
	for _, opt := range opts {
		opt(&o)
	}

	if !spec.valid() {
		return nil, ErrBadScratchSpec
	}
	if o.workers < 0 {
		return nil, ErrBadWorkers
	}

	switch target {
	case TargetSequential:
		return &Engine{
			target: target,
			lanes:  []*Workspace{NewWorkspace(spec)},
		}, nil

	case TargetParallel:
		if got := spec.Bytes(); got > maxParallelScratchBytes {
			return nil, fmt.Errorf("%w: %d bytes > %d", ErrScratchBudget, got, maxParallelScratchBytes)
		}
		workers := o.workers
		if workers == 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		lanes := make([]*Workspace, workers)
		for i := range lanes {
			lanes[i] = NewWorkspace(spec)
		}
		return &Engine{
			target: target,
			pool:   workerpool.New(workers),
			lanes:  lanes,
		}, nil

	default:
		return nil, fmt.Errorf("prob3: unknown target %d", target)
	}
}

// Target returns the engine's execution target.
func (e *Engine) Target() Target {
	return e.target
}

// Lanes returns the number of scratch lanes (1 for the sequential target).
func (e *Engine) Lanes() int {
	return len(e.lanes)
}

// Close releases the engine's workers. ForEach on a closed engine degrades
// to sequential execution on lane 0.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// ForEach runs kernel once per event index in [0, n). Under the sequential
// target events run in order on one workspace; under the parallel target
// contiguous event ranges run concurrently, each on its own lane workspace.
// The workspace is reset before every event, so no per-event state leaks.
func (e *Engine) ForEach(n int, kernel Kernel) {
	if n <= 0 {
		return
	}

	if e.target == TargetSequential || e.pool == nil {
		ws := e.lanes[0]
		for i := 0; i < n; i++ {
			ws.Reset()
			kernel(ws, i)
		}
		return
	}

	e.pool.ParallelFor(n, MinChunk(), func(lane, start, end int) {
		ws := e.lanes[lane]
		for i := start; i < end; i++ {
			ws.Reset()
			kernel(ws, i)
		}
	})
}

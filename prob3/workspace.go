package prob3

import (
	"unsafe"

	"github.com/ajroetker/go-prob3/prob3/cmatrix"
)

// ScratchSpec declares a kernel's per-lane scratch requirement up front, so
// an Engine can be refused at construction time rather than failing mid-batch.
// It is the explicit-allocator replacement for per-thread local memory on an
// accelerator and per-call heap buffers on a CPU.
type ScratchSpec struct {
	// Complex3x3 is the peak number of live complex 3x3 scratch matrices,
	// counting nested kernel calls.
	Complex3x3 int

	// ComplexVec3 is the peak number of live complex 3-vector buffers.
	ComplexVec3 int

	// LayerDepth is the capacity of the per-event transition-matrix buffer,
	// at least the maximum layer count of the earth model in use.
	LayerDepth int
}

// Bytes returns the per-lane scratch footprint implied by the spec.
func (s ScratchSpec) Bytes() int {
	var m cmatrix.C3x3
	var v cmatrix.C3
	return (s.Complex3x3+s.LayerDepth)*int(unsafe.Sizeof(m)) +
		s.ComplexVec3*int(unsafe.Sizeof(v))
}

func (s ScratchSpec) valid() bool {
	return s.Complex3x3 >= 0 && s.ComplexVec3 >= 0 && s.LayerDepth >= 0
}

// Workspace hands out fixed-capacity scratch buffers to a kernel invocation.
// Buffers are arena-allocated once per lane; kernels take them in allocation
// order and the engine rewinds the arena between events, so no per-event
// allocation ever happens on the hot path.
//
// A Workspace is not safe for concurrent use; the engine binds one per lane.
type Workspace struct {
	cm     []cmatrix.C3x3
	cv     []cmatrix.C3
	trans  []cmatrix.C3x3
	cmUsed int
	cvUsed int
}

// Mark captures the current arena position for nested kernel calls.
type Mark struct {
	cm, cv int
}

// NewWorkspace allocates a workspace satisfying spec. Exceeding the spec at
// runtime is a programmer error and panics.
func NewWorkspace(spec ScratchSpec) *Workspace {
	return &Workspace{
		cm:    make([]cmatrix.C3x3, spec.Complex3x3),
		cv:    make([]cmatrix.C3, spec.ComplexVec3),
		trans: make([]cmatrix.C3x3, spec.LayerDepth),
	}
}

// C3x3 returns the next zeroed complex 3x3 scratch matrix.
func (w *Workspace) C3x3() *cmatrix.C3x3 {
	if w.cmUsed >= len(w.cm) {
		panic("prob3: complex 3x3 scratch exceeds declared ScratchSpec")
	}
	m := &w.cm[w.cmUsed]
	w.cmUsed++
	cmatrix.Clear(m)
	return m
}

// C3 returns the next zeroed complex 3-vector scratch buffer.
func (w *Workspace) C3() *cmatrix.C3 {
	if w.cvUsed >= len(w.cv) {
		panic("prob3: complex vector scratch exceeds declared ScratchSpec")
	}
	v := &w.cv[w.cvUsed]
	w.cvUsed++
	*v = cmatrix.C3{}
	return v
}

// Transitions returns the per-event transition-matrix buffer, one matrix per
// traversed layer. n must not exceed the declared LayerDepth.
func (w *Workspace) Transitions(n int) []cmatrix.C3x3 {
	if n > len(w.trans) {
		panic("prob3: transition depth exceeds declared ScratchSpec")
	}
	return w.trans[:n]
}

// Mark returns the current arena position.
func (w *Workspace) Mark() Mark {
	return Mark{cm: w.cmUsed, cv: w.cvUsed}
}

// Rewind releases every buffer taken since mark.
func (w *Workspace) Rewind(m Mark) {
	w.cmUsed = m.cm
	w.cvUsed = m.cv
}

// Reset releases all scratch; the engine calls this before every event.
func (w *Workspace) Reset() {
	w.cmUsed = 0
	w.cvUsed = 0
}

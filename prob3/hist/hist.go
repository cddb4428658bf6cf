package hist

import (
	"math"
	"sync/atomic"
)

// Hist2D accumulates float64 weights on a fixed two-dimensional grid.
// Fill is safe for concurrent use: cells are updated with a compare-and-swap
// loop over the bit pattern, so concurrent lanes never lose increments.
// The summation order still depends on scheduling, so concurrent totals can
// differ from sequential ones by rounding only.
type Hist2D struct {
	x, y    *Axis
	cells   []uint64 // float64 bit patterns, row-major [x][y]
	dropped atomic.Uint64
}

// NewHist2D builds an empty histogram over the two axes.
func NewHist2D(x, y *Axis) *Hist2D {
	return &Hist2D{
		x:     x,
		y:     y,
		cells: make([]uint64, x.NumBins()*y.NumBins()),
	}
}

// XAxis returns the first axis.
func (h *Hist2D) XAxis() *Axis { return h.x }

// YAxis returns the second axis.
func (h *Hist2D) YAxis() *Axis { return h.y }

// Fill adds weight w to the cell holding (x, y). Values outside either axis
// are counted as dropped rather than binned.
func (h *Hist2D) Fill(x, y, w float64) {
	ix := h.x.Find(x)
	iy := h.y.Find(y)
	if ix < 0 || iy < 0 {
		h.dropped.Add(1)
		return
	}
	cell := &h.cells[ix*h.y.NumBins()+iy]
	for {
		old := atomic.LoadUint64(cell)
		next := math.Float64bits(math.Float64frombits(old) + w)
		if atomic.CompareAndSwapUint64(cell, old, next) {
			return
		}
	}
}

// At returns the accumulated weight of cell (ix, iy).
func (h *Hist2D) At(ix, iy int) float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.cells[ix*h.y.NumBins()+iy]))
}

// Values returns a snapshot of the grid as [x][y] weights.
func (h *Hist2D) Values() [][]float64 {
	nx, ny := h.x.NumBins(), h.y.NumBins()
	out := make([][]float64, nx)
	for ix := 0; ix < nx; ix++ {
		row := make([]float64, ny)
		for iy := 0; iy < ny; iy++ {
			row[iy] = h.At(ix, iy)
		}
		out[ix] = row
	}
	return out
}

// Sum returns the total accumulated weight.
func (h *Hist2D) Sum() float64 {
	sum := 0.0
	for i := range h.cells {
		sum += math.Float64frombits(atomic.LoadUint64(&h.cells[i]))
	}
	return sum
}

// Dropped returns the number of fills that fell outside the grid.
func (h *Hist2D) Dropped() uint64 { return h.dropped.Load() }

// Reset zeroes every cell and the dropped counter.
func (h *Hist2D) Reset() {
	for i := range h.cells {
		atomic.StoreUint64(&h.cells[i], 0)
	}
	h.dropped.Store(0)
}

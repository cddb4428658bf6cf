// Package hist provides binned accumulation of weighted events into
// two-dimensional histograms that stay correct under concurrent filling.
package hist

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Axis errors.
var (
	ErrTooFewEdges   = errors.New("hist: axis needs at least two edges")
	ErrEdgesNotInc   = errors.New("hist: axis edges must be strictly increasing")
	ErrEdgeNotFinite = errors.New("hist: axis edges must be finite")
	ErrBadLogRange   = errors.New("hist: log axis needs 0 < lo < hi")
	ErrBadBinCount   = errors.New("hist: axis needs at least one bin")
)

// Axis is a monotonically increasing binning of one observable. Bins are
// half-open [edge i, edge i+1) except the last, which includes its upper
// edge so the top boundary value is not dropped.
type Axis struct {
	edges []float64
}

// NewAxis builds an axis from explicit edges.
func NewAxis(edges []float64) (*Axis, error) {
	if len(edges) < 2 {
		return nil, ErrTooFewEdges
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("%w: edge %d is %v", ErrEdgeNotFinite, i, e)
		}
		if i > 0 && e <= edges[i-1] {
			return nil, fmt.Errorf("%w: edge %d (%v) <= edge %d (%v)",
				ErrEdgesNotInc, i, e, i-1, edges[i-1])
		}
	}
	cp := make([]float64, len(edges))
	copy(cp, edges)
	return &Axis{edges: cp}, nil
}

// LinearAxis builds an axis of n equal-width bins spanning [lo, hi].
func LinearAxis(lo, hi float64, n int) (*Axis, error) {
	if n < 1 {
		return nil, ErrBadBinCount
	}
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := 0; i <= n; i++ {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi
	return NewAxis(edges)
}

// LogAxis builds an axis of n bins equally spaced in log10 over [lo, hi],
// the usual choice for neutrino energy spectra.
func LogAxis(lo, hi float64, n int) (*Axis, error) {
	if n < 1 {
		return nil, ErrBadBinCount
	}
	if lo <= 0 || hi <= lo {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrBadLogRange, lo, hi)
	}
	llo, lhi := math.Log10(lo), math.Log10(hi)
	step := (lhi - llo) / float64(n)
	edges := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		edges[i] = math.Pow(10, llo+float64(i)*step)
	}
	edges[0] = lo
	edges[n] = hi
	return NewAxis(edges)
}

// NumBins returns the number of bins.
func (a *Axis) NumBins() int { return len(a.edges) - 1 }

// Edges returns a copy of the bin edges.
func (a *Axis) Edges() []float64 {
	cp := make([]float64, len(a.edges))
	copy(cp, a.edges)
	return cp
}

// Lo returns the lowest edge.
func (a *Axis) Lo() float64 { return a.edges[0] }

// Hi returns the highest edge.
func (a *Axis) Hi() float64 { return a.edges[len(a.edges)-1] }

// Find returns the bin index holding v, or -1 when v falls outside the axis
// (including NaN). The top edge belongs to the last bin.
func (a *Axis) Find(v float64) int {
	n := len(a.edges)
	if math.IsNaN(v) || v < a.edges[0] || v > a.edges[n-1] {
		return -1
	}
	if v == a.edges[n-1] {
		return n - 2
	}
	// Index of the first edge strictly greater than v; v lives in the bin
	// just below it.
	i := sort.Search(n, func(k int) bool { return a.edges[k] > v })
	return i - 1
}

package weight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent(t *testing.T) {
	tests := []struct {
		name                               string
		probE, probMu, fluxE, fluxMu, aeff float64
		want                               float64
	}{
		{"pure nue channel", 1, 0, 2, 5, 3, 6},
		{"pure numu channel", 0, 1, 2, 5, 3, 15},
		{"mixed", 0.25, 0.5, 4, 2, 10, 20},
		{"zero aeff kills the event", 1, 1, 2, 5, 0, 0},
		{"zero probabilities are legitimate", 0, 0, 2, 5, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Event(tt.probE, tt.probMu, tt.fluxE, tt.fluxMu, tt.aeff)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	probE := []float64{1, 0, 0.25}
	probMu := []float64{0, 1, 0.5}
	fluxE := []float64{2, 2, 4}
	fluxMu := []float64{5, 5, 2}
	aeff := []float64{3, 3, 10}

	out := make([]float64, 3)
	Apply(out, probE, probMu, fluxE, fluxMu, aeff)
	assert.Equal(t, []float64{6, 15, 20}, out)
}

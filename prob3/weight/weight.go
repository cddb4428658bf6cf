// Package weight turns oscillation probabilities, atmospheric fluxes and a
// detector's effective area into per-event Monte Carlo weights.
package weight

// Event computes one event's weight: the oscillated flux reaching the
// detector in the observed flavor, folded with the effective area.
// probE and probMu are the probabilities of a nu_e respectively nu_mu
// produced in the atmosphere being observed as the event's flavor; fluxNuE
// and fluxNuMu are the unoscillated fluxes at production. Zero is a
// legitimate weight.
func Event(probE, probMu, fluxNuE, fluxNuMu, aeff float64) float64 {
	return (fluxNuE*probE + fluxNuMu*probMu) * aeff
}

// Apply fills out[i] = Event(probE[i], probMu[i], ...) for aligned columns.
// All slices must share out's length.
func Apply(out, probE, probMu, fluxNuE, fluxNuMu, aeff []float64) {
	for i := range out {
		out[i] = Event(probE[i], probMu[i], fluxNuE[i], fluxNuMu[i], aeff[i])
	}
}

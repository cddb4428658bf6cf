package osc

import (
	"math"
	"math/cmplx"

	"github.com/ajroetker/go-prob3/prob3"
	"github.com/ajroetker/go-prob3/prob3/cmatrix"
)

// Physical constants in the kernel's working units (GeV, km, eV^2, g/cm^3).
const (
	// tworttwoGf is 2*sqrt(2)*G_Fermi in (eV^2 cm^3)/(mole GeV).
	tworttwoGf = 1.52588e-4

	// hbarCFactor is (1/2)*(1/(hbar*c)) in GeV/(eV^2 km).
	hbarCFactor = 2.534

	// vacuumLOverE converts dm^2 * baseline / energy into half the vacuum
	// oscillation phase.
	vacuumLOverE = 1.26693281

	// layerCacheTol is the (density, distance) tolerance within which two
	// layers share one transition matrix; symmetric trajectories traverse
	// most shells twice.
	layerCacheTol = 1e-5

	// nsiRhoScale assumes three times the electron density for the
	// non-standard-interaction quark density.
	nsiRhoScale = 3.0
)

// ScratchSpec returns the per-lane scratch requirement of the matter kernel
// for profiles of at most maxLayers layers. Engines running Propagate must
// be constructed with at least this spec.
func ScratchSpec(maxLayers int) prob3.ScratchSpec {
	return prob3.ScratchSpec{
		Complex3x3:  17,
		ComplexVec3: 2,
		LayerDepth:  maxLayers,
	}
}

// MatterIn lists every input of the matter propagation kernel explicitly, so
// a missing buffer is a compile error rather than a runtime dispatch failure.
type MatterIn struct {
	// DM is the vacuum mass-splitting matrix from Params.MassSplittings.
	DM *cmatrix.R3x3

	// Mix is the PMNS matrix from Params.MixMatrix, never conjugated;
	// the kernel applies the antineutrino conjugation itself.
	Mix *cmatrix.C3x3

	// NSI is the non-standard-interaction epsilon matrix; nil means
	// standard oscillations only.
	NSI *cmatrix.C3x3

	// NuType selects neutrino or antineutrino propagation.
	NuType NuType

	// EnergyGeV is the neutrino's true energy.
	EnergyGeV float64

	// Density and Distance are the event's layer profile in trajectory
	// order: electron-weighted density in g/cm^3 and path length in km.
	Density  []float64
	Distance []float64

	// InitialMassEigenstates propagates mass eigenstates instead of flavor
	// eigenstates.
	InitialMassEigenstates bool
}

// Propagate computes matter oscillation probabilities for one event.
// probs[i][j] is the probability that a neutrino produced as flavor i is
// observed as flavor j after traversing the layer profile; every row sums
// to 1 up to floating-point error.
//
// The kernel touches only its inputs and ws, so it runs unchanged and with
// identical results under both execution targets.
func Propagate(ws *prob3.Workspace, in MatterIn, probs *cmatrix.R3x3) {
	if len(in.Density) != len(in.Distance) {
		panic("osc: layer density/distance length mismatch")
	}

	hVac := ws.C3x3()
	mixNubar := ws.C3x3()
	mixNubarCT := ws.C3x3()
	transProduct := ws.C3x3()
	tmp := ws.C3x3()
	rawPsi := ws.C3()
	outPsi := ws.C3()

	for i := range probs {
		for j := range probs[i] {
			probs[i][j] = 0
		}
	}

	// Antineutrinos see the conjugated mixing matrix (flips the CP phase)
	// and a sign-flipped matter potential below.
	if in.NuType == NuBar {
		cmatrix.Conjugate(in.Mix, mixNubar)
	} else {
		cmatrix.Copy(in.Mix, mixNubar)
	}
	cmatrix.ConjugateTranspose(mixNubar, mixNubarCT)

	hamiltonianVacuum(ws, mixNubar, mixNubarCT, in.DM, hVac)

	// One transition matrix per traversed layer, memoizing repeated
	// (density, distance) pairs: a chord through a symmetric earth crosses
	// most shells twice.
	nLayers := len(in.Distance)
	trans := ws.Transitions(nLayers)
	for i := 0; i < nLayers; i++ {
		density := in.Density[i]
		distance := in.Distance[i]
		if distance <= 0 {
			continue
		}

		cached := -1
		for j := 0; j < i; j++ {
			if math.Abs(in.Density[j]-density) < layerCacheTol &&
				math.Abs(in.Distance[j]-distance) < layerCacheTol {
				cached = j
			}
		}
		if cached >= 0 {
			trans[i] = trans[cached]
			continue
		}
		transitionMatrix(ws, in.NuType, in.EnergyGeV, density, distance,
			mixNubar, mixNubarCT, in.NSI, hVac, in.DM, &trans[i])
	}

	// Compose in trajectory order: the first layer acts first, so later
	// layers multiply from the left.
	first := true
	for i := 0; i < nLayers; i++ {
		if in.Distance[i] <= 0 {
			continue
		}
		if first {
			cmatrix.Copy(&trans[i], transProduct)
			first = false
			continue
		}
		cmatrix.Mul(&trans[i], transProduct, tmp)
		cmatrix.Copy(tmp, transProduct)
	}
	if first {
		// Nothing traversed: the identity evolution.
		for i := range transProduct {
			transProduct[i][i] = 1
		}
	}

	// Rotate the mass-basis evolution operator into the flavor basis.
	cmatrix.Mul(transProduct, mixNubarCT, tmp)
	cmatrix.Mul(mixNubar, tmp, transProduct)

	// Squared amplitudes of each flavor component of the evolved state.
	for i := 0; i < 3; i++ {
		*rawPsi = cmatrix.C3{}
		if in.InitialMassEigenstates {
			fromMassEigenstate(i+1, mixNubar, rawPsi)
		} else {
			rawPsi[i] = 1
		}
		cmatrix.MulVec(transProduct, rawPsi, outPsi)
		for j := 0; j < 3; j++ {
			re, im := real(outPsi[j]), imag(outPsi[j])
			probs[i][j] += re*re + im*im
		}
	}
}

// hamiltonianVacuum builds the vacuum Hamiltonian in the flavor basis,
// without the 1/(2E) factor which is applied per layer.
func hamiltonianVacuum(ws *prob3.Workspace, mixNubar, mixNubarCT *cmatrix.C3x3, dm *cmatrix.R3x3, hVac *cmatrix.C3x3) {
	mark := ws.Mark()
	defer ws.Rewind(mark)

	dmDiag := ws.C3x3()
	tmp := ws.C3x3()

	dmDiag[1][1] = complex(dm[1][0], 0)
	dmDiag[2][2] = complex(dm[2][0], 0)

	cmatrix.Mul(dmDiag, mixNubarCT, tmp)
	cmatrix.Mul(mixNubar, tmp, hVac)
}

// hamiltonianMatter builds the matter Hamiltonian in the flavor basis: the
// standard charged-current forward-scattering potential plus the optional
// non-standard-interaction term. rho is the electron-weighted density; the
// potential flips sign for antineutrinos.
func hamiltonianMatter(rho float64, nsi *cmatrix.C3x3, nuType NuType, hMat *cmatrix.C3x3) {
	a := 0.5 * rho * tworttwoGf
	if nuType == NuBar {
		a = -a
	}

	cmatrix.Clear(hMat)
	hMat[0][0] = complex(a, 0)

	if nsi == nil {
		return
	}
	fact := complex(nsiRhoScale*a, 0)
	for i := range hMat {
		for j := range hMat[i] {
			hMat[i][j] += fact * nsi[i][j]
		}
	}
}

// transitionMatrix computes one layer's transition amplitude matrix in the
// mass eigenstate basis for a neutrino of the given energy crossing matter
// of uniform density rho over baseline km.
func transitionMatrix(ws *prob3.Workspace, nuType NuType, energy, rho, baseline float64,
	mixNubar, mixNubarCT, nsi, hVac *cmatrix.C3x3, dm *cmatrix.R3x3, out *cmatrix.C3x3) {

	mark := ws.Mark()
	defer ws.Rewind(mark)

	hMat := ws.C3x3()
	dmMatVac := ws.C3x3()
	dmMatMat := ws.C3x3()
	hFull := ws.C3x3()
	tmp := ws.C3x3()
	hMassBasis := ws.C3x3()

	hamiltonianMatter(rho, nsi, nuType, hMat)

	// Full Hamiltonian: vacuum part scaled by 1/(2E) plus matter part.
	oneOverTwoE := 0.5 / energy
	for i := range hFull {
		for j := range hFull[i] {
			hFull[i][j] = hVac[i][j]*complex(oneOverTwoE, 0) + hMat[i][j]
		}
	}

	// Modified mass splittings in matter from the full Hamiltonian.
	matterSplittings(energy, hFull, dm, dmMatMat, dmMatVac)

	// Matter Hamiltonian rotated into the mass eigenstate basis, so the
	// effective mixing matrix elements never appear explicitly.
	cmatrix.Mul(hMat, mixNubar, tmp)
	cmatrix.Mul(mixNubarCT, tmp, hMassBasis)

	transitionMassBasis(ws, baseline, energy, dmMatVac, dmMatMat, hMassBasis, out)
}

// transitionMassBasis assembles the transition amplitude matrix from the
// in-matter splittings, equation (10) of the Barger paper generalized to an
// arbitrary potential matrix.
func transitionMassBasis(ws *prob3.Workspace, baseline, energy float64,
	dmMatVac, dmMatMat, hMassBasis *cmatrix.C3x3, out *cmatrix.C3x3) {

	mark := ws.Mark()
	defer ws.Rewind(mark)

	// product[k][i][j] is the projector-like factor attached to in-matter
	// eigenvalue k.
	product := [3]*cmatrix.C3x3{ws.C3x3(), ws.C3x3(), ws.C3x3()}
	hMinusM := [3]*cmatrix.C3x3{ws.C3x3(), ws.C3x3(), ws.C3x3()}

	cmatrix.Clear(out)

	twoE := complex(2*energy, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				hMinusM[k][i][j] = twoE * hMassBasis[i][j]
				if i == j {
					hMinusM[k][i][j] -= dmMatVac[k][j]
				}
			}
		}
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var p0, p1, p2 complex128
			for k := 0; k < 3; k++ {
				p0 += hMinusM[1][i][k] * hMinusM[2][k][j]
				p1 += hMinusM[2][i][k] * hMinusM[0][k][j]
				p2 += hMinusM[0][i][k] * hMinusM[1][k][j]
			}
			product[0][i][j] = p0 / (dmMatMat[0][1] * dmMatMat[0][2])
			product[1][i][j] = p1 / (dmMatMat[1][2] * dmMatMat[1][0])
			product[2][i][j] = p2 / (dmMatMat[2][0] * dmMatMat[2][1])
		}
	}

	loe := complex(baseline/energy*hbarCFactor, 0)
	for k := 0; k < 3; k++ {
		arg := -dmMatVac[k][0] * loe
		c := cmplx.Exp(arg * complex(0, 1))
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				out[i][j] += c * product[k][i][j]
			}
		}
	}
}

// matterSplittings solves the characteristic cubic of the full Hamiltonian
// for the in-matter mass eigenvalues and fills the splitting matrices:
// dmMatMat[i][j] = M_i - M_j and dmMatVac[i][j] = M_i - m_j^2(vacuum).
// Eigenvalues are matched to the vacuum masses they reproduce at zero
// density so level ordering stays consistent across layers.
func matterSplittings(energy float64, hMat *cmatrix.C3x3, dm *cmatrix.R3x3, dmMatMat, dmMatVac *cmatrix.C3x3) {
	realProductA := real(hMat[0][1] * hMat[1][2] * hMat[2][0])
	realProductB := real(hMat[0][0] * hMat[1][1] * hMat[2][2])

	normHEMuSq := real(hMat[0][1])*real(hMat[0][1]) + imag(hMat[0][1])*imag(hMat[0][1])
	normHETauSq := real(hMat[0][2])*real(hMat[0][2]) + imag(hMat[0][2])*imag(hMat[0][2])
	normHMuTauSq := real(hMat[1][2])*real(hMat[1][2]) + imag(hMat[1][2])*imag(hMat[1][2])

	sum1122 := hMat[1][1] + hMat[2][2]
	c1 := real(hMat[0][0])*real(sum1122) -
		imag(hMat[0][0])*imag(sum1122) +
		real(hMat[1][1])*real(hMat[2][2]) -
		imag(hMat[1][1])*imag(hMat[2][2]) -
		normHEMuSq - normHMuTauSq - normHETauSq

	c0 := real(hMat[0][0])*normHMuTauSq +
		real(hMat[1][1])*normHETauSq +
		real(hMat[2][2])*normHEMuSq -
		2.0*realProductA - realProductB

	c2 := -real(hMat[0][0]) - real(hMat[1][1]) - real(hMat[2][2])

	oneOverTwoE := 0.5 / energy
	const oneThird = 1.0 / 3.0
	const twoThird = 2.0 / 3.0

	x := dm[1][0]
	y := dm[2][0]

	c2V := -oneOverTwoE * (x + y)

	p := c2*c2 - 3.0*c1
	pV := oneOverTwoE * oneOverTwoE * (x*x + y*y - x*y)
	p = math.Max(0.0, p)

	q := -13.5*c0 - c2*c2*c2 + 4.5*c1*c2
	qV := oneOverTwoE * oneOverTwoE * oneOverTwoE * (x + y) * ((x+y)*(x+y) - 4.5*x*y)

	disc := p*p*p - q*q
	discV := pV*pV*pV - qV*qV
	disc = math.Max(0.0, disc)

	var theta, thetaV, mMat, mMatU, mMatV [3]float64

	a := twoThird * math.Pi
	res := math.Atan2(math.Sqrt(disc), q) * oneThird
	theta[0] = res + a
	theta[1] = res - a
	theta[2] = res
	resV := math.Atan2(math.Sqrt(discV), qV) * oneThird
	thetaV[0] = resV + a
	thetaV[1] = resV - a
	thetaV[2] = resV

	b := twoThird * math.Sqrt(p)
	bV := twoThird * math.Sqrt(pV)

	for i := 0; i < 3; i++ {
		mMatU[i] = 2.0 * energy * (b*math.Cos(theta[i]) - c2*oneThird + dm[0][0])
		mMatV[i] = 2.0 * energy * (bV*math.Cos(thetaV[i]) - c2V*oneThird + dm[0][0])
	}

	// Pick, for each vacuum mass, the in-matter eigenvalue whose
	// zero-density counterpart reproduces it.
	for i := 0; i < 3; i++ {
		best := math.Abs(dm[i][0] - mMatV[0])
		k := 0
		for j := 0; j < 3; j++ {
			if d := math.Abs(dm[i][0] - mMatV[j]); d < best {
				k = j
				best = d
			}
		}
		mMat[i] = mMatU[k]
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dmMatMat[i][j] = complex(mMat[i]-mMat[j], 0)
			dmMatVac[i][j] = complex(mMat[i]-dm[j][0], 0)
		}
	}
}

// fromMassEigenstate writes the flavor-basis state of mass eigenstate
// `state` (1-based) into psi; mixNubar already reflects the neutrino type.
func fromMassEigenstate(state int, mixNubar *cmatrix.C3x3, psi *cmatrix.C3) {
	var mass cmatrix.C3
	mass[state-1] = 1
	cmatrix.MulVec(mixNubar, &mass, psi)
}

// VacuumIn lists every input of the vacuum kernel explicitly.
type VacuumIn struct {
	// DM is the vacuum mass-splitting matrix.
	DM *cmatrix.R3x3

	// Mix is the PMNS matrix, never conjugated.
	Mix *cmatrix.C3x3

	// NuType selects neutrino or antineutrino propagation.
	NuType NuType

	// EnergyGeV is the neutrino's true energy.
	EnergyGeV float64

	// Distance holds per-layer baselines in km; only their sum matters in
	// vacuum.
	Distance []float64
}

// PropagateVacuum computes vacuum oscillation probabilities over the summed
// baseline, the earth-model-free fallback. probs has the same layout as in
// Propagate.
func PropagateVacuum(in VacuumIn, probs *cmatrix.R3x3) {
	var local cmatrix.R3x3

	baseline := 0.0
	for _, d := range in.Distance {
		baseline += d
	}

	lOverE := vacuumLOverE * baseline / in.EnergyGeV
	s21 := math.Sin(in.DM[1][0] * lOverE)
	s32 := math.Sin(in.DM[2][1] * lOverE)
	s31 := math.Sin(in.DM[2][0] * lOverE)

	// Only the real parts of the mixing matrix enter here.
	for ista := 0; ista < 3; ista++ {
		r0 := real(in.Mix[ista][0])
		r1 := real(in.Mix[ista][1])
		r2 := real(in.Mix[ista][2])

		base := (r0*r1*s21)*(r0*r1*s21) +
			(r1*r2*s32)*(r1*r2*s32) +
			(r2*r0*s31)*(r2*r0*s31)

		for iend := 0; iend < 2; iend++ {
			if iend == ista {
				local[ista][iend] = 1.0 - 4.0*base
			} else {
				local[ista][iend] = -4.0 * base
			}
		}
		local[ista][2] = 1.0 - local[ista][0] - local[ista][1]
	}

	if in.NuType == Nu {
		*probs = local
		return
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			probs[i][j] = local[j][i]
		}
	}
}

// Package cmatrix provides the fixed-size complex matrix primitives used by
// the oscillation kernels: 3x3 complex/real matrices and 3-vectors, matching
// the three neutrino flavors.
//
// All operations write into explicit output buffers, allocate nothing, and
// are branch-free, so the same function is usable unchanged under both the
// sequential and the data-parallel execution target.
package cmatrix

// C3 is a complex 3-vector (one amplitude per flavor).
type C3 [3]complex128

// C3x3 is a complex 3x3 matrix in the flavor/mass basis.
type C3x3 [3][3]complex128

// R3x3 is a real 3x3 matrix (probabilities, mass splittings).
type R3x3 [3][3]float64

// Clear sets every element of a to zero.
func Clear(a *C3x3) {
	for i := range a {
		for j := range a[i] {
			a[i][j] = 0
		}
	}
}

// Copy writes the elements of a into b.
func Copy(a, b *C3x3) {
	for i := range a {
		for j := range a[i] {
			b[i][j] = a[i][j]
		}
	}
}

// Conjugate writes the elementwise complex conjugate of a into b.
func Conjugate(a, b *C3x3) {
	for i := range a {
		for j := range a[i] {
			b[i][j] = conj(a[i][j])
		}
	}
}

// ConjugateTranspose writes the conjugate transpose of a into b,
// b[i][j] = conj(a[j][i]). b must not alias a.
func ConjugateTranspose(a, b *C3x3) {
	for i := range a {
		for j := range a[i] {
			b[i][j] = conj(a[j][i])
		}
	}
}

// Mul computes the matrix product c = a * b. c must not alias a or b.
func Mul(a, b, c *C3x3) {
	for j := range b[0] {
		for i := range a {
			var sum complex128
			for n := range c {
				sum += a[i][n] * b[n][j]
			}
			c[i][j] = sum
		}
	}
}

// MulVec computes the matrix-vector product w = a * v. w must not alias v.
func MulVec(a *C3x3, v, w *C3) {
	for i := range a {
		var sum complex128
		for j := range a[i] {
			sum += a[i][j] * v[j]
		}
		w[i] = sum
	}
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}

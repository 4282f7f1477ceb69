package tensor

import (
	"fmt"
	"math"
)

// padeCoefficients are the [6/6] Padé coefficients of exp(x):
// c_k = (2p-k)! p! / ((2p)! k! (p-k)!) with p = 6.
var padeCoefficients = [...]float64{
	1,
	1.0 / 2,
	5.0 / 44,
	1.0 / 66,
	1.0 / 792,
	1.0 / 15840,
	1.0 / 665280,
}

// padeNormBound is the 1-norm below which the [6/6] approximant is accurate
// to double precision.
const padeNormBound = 0.5

// expmPade computes exp(a) for a single n x n matrix by scaling and squaring
// around a [6/6] Padé approximant.
func expmPade(a []complex128, n int) ([]complex128, error) {
	squarings := 0
	if norm := denseOneNorm(a, n); norm > padeNormBound {
		squarings = int(math.Ceil(math.Log2(norm / padeNormBound)))
	}
	scale := complex(math.Ldexp(1, -squarings), 0)
	x := make([]complex128, n*n)
	for i, v := range a {
		x[i] = v * scale
	}

	num := denseIdentity(n)
	den := denseIdentity(n)
	power := denseIdentity(n)
	for k := 1; k < len(padeCoefficients); k++ {
		power = denseMul(power, x, n)
		c := complex(padeCoefficients[k], 0)
		sign := complex(1, 0)
		if k%2 == 1 {
			sign = -1
		}
		for i, v := range power {
			num[i] += c * v
			den[i] += sign * c * v
		}
	}

	result, err := denseSolve(den, num, n)
	if err != nil {
		return nil, fmt.Errorf("pade denominator: %w", err)
	}
	for i := 0; i < squarings; i++ {
		result = denseMul(result, result, n)
	}
	return result, nil
}

// Expm returns exp(m) for every batch element using scaling and squaring.
func Expm(m *Matrix) (*Matrix, error) {
	size := m.dim * m.dim
	out := ZerosMatrix(m.dim, m.batch)
	for b := 0; b < m.batch; b++ {
		e, err := expmPade(m.data[b*size:(b+1)*size], m.dim)
		if err != nil {
			return nil, fmt.Errorf("expm of batch element %d: %w", b, err)
		}
		copy(out.data[b*size:], e)
	}
	return out, nil
}

// ExpmFrechet returns exp(a) and the Fréchet derivative L(a, e) of the matrix
// exponential at a in direction e, for every broadcast batch element. Both are
// read from exp([[a, e], [0, a]]) = [[exp(a), L(a, e)], [0, exp(a)]].
func ExpmFrechet(a, e *Matrix) (*Matrix, *Matrix, error) {
	if a.dim != e.dim {
		return nil, nil, fmt.Errorf("%w: frechet direction %dx%d for %dx%d matrix",
			ErrShapeMismatch, e.dim, e.dim, a.dim, a.dim)
	}
	batch, err := BroadcastBatch(a.batch, e.batch)
	if err != nil {
		return nil, nil, fmt.Errorf("frechet: %w", err)
	}
	n := a.dim
	n2 := 2 * n
	expA := ZerosMatrix(n, batch)
	deriv := ZerosMatrix(n, batch)
	for b := 0; b < batch; b++ {
		ab := BatchIndex(a.batch, b)
		eb := BatchIndex(e.batch, b)
		block := make([]complex128, n2*n2)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				av := a.At(r, c, ab)
				block[r*n2+c] = av
				block[(r+n)*n2+c+n] = av
				block[r*n2+c+n] = e.At(r, c, eb)
			}
		}
		exp, err := expmPade(block, n2)
		if err != nil {
			return nil, nil, fmt.Errorf("frechet of batch element %d: %w", b, err)
		}
		off := b * n * n
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				expA.data[off+r*n+c] = exp[r*n2+c]
				deriv.data[off+r*n+c] = exp[r*n2+c+n]
			}
		}
	}
	return expA, deriv, nil
}

package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Dense single-matrix kernels used by the matrix exponential. Matrices are
// row-major n x n slices.

func denseIdentity(n int) []complex128 {
	out := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		out[i*n+i] = 1
	}
	return out
}

func denseMul(a, b []complex128, n int) []complex128 {
	out := make([]complex128, n*n)
	batchMatmulComplex128(out, a, b, 1, 1, 1, n)
	return out
}

// denseOneNorm returns the maximum absolute column sum.
func denseOneNorm(a []complex128, n int) float64 {
	norm := 0.0
	for c := 0; c < n; c++ {
		sum := 0.0
		for r := 0; r < n; r++ {
			sum += cmplx.Abs(a[r*n+c])
		}
		norm = math.Max(norm, sum)
	}
	return norm
}

// denseSolve solves A X = B for X using LU decomposition with partial
// pivoting. A and B are consumed.
func denseSolve(a, b []complex128, n int) ([]complex128, error) {
	for col := 0; col < n; col++ {
		pivot := col
		best := cmplx.Abs(a[col*n+col])
		for r := col + 1; r < n; r++ {
			if v := cmplx.Abs(a[r*n+col]); v > best {
				pivot, best = r, v
			}
		}
		if best == 0 {
			return nil, fmt.Errorf("%w: zero pivot in column %d", ErrSingular, col)
		}
		if pivot != col {
			for c := 0; c < n; c++ {
				a[col*n+c], a[pivot*n+c] = a[pivot*n+c], a[col*n+c]
				b[col*n+c], b[pivot*n+c] = b[pivot*n+c], b[col*n+c]
			}
		}
		inv := 1 / a[col*n+col]
		for r := col + 1; r < n; r++ {
			f := a[r*n+col] * inv
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r*n+c] -= f * a[col*n+c]
			}
			for c := 0; c < n; c++ {
				b[r*n+c] -= f * b[col*n+c]
			}
		}
	}
	// Back substitution, one right-hand side column at a time.
	x := make([]complex128, n*n)
	for c := 0; c < n; c++ {
		for r := n - 1; r >= 0; r-- {
			sum := b[r*n+c]
			for k := r + 1; k < n; k++ {
				sum -= a[r*n+k] * x[k*n+c]
			}
			x[r*n+c] = sum / a[r*n+r]
		}
	}
	return x, nil
}

// Inverse returns the inverse of every batch element.
func (m *Matrix) Inverse() (*Matrix, error) {
	size := m.dim * m.dim
	out := ZerosMatrix(m.dim, m.batch)
	for b := 0; b < m.batch; b++ {
		a := make([]complex128, size)
		copy(a, m.data[b*size:(b+1)*size])
		x, err := denseSolve(a, denseIdentity(m.dim), m.dim)
		if err != nil {
			return nil, fmt.Errorf("inverse of batch element %d: %w", b, err)
		}
		copy(out.data[b*size:], x)
	}
	return out, nil
}

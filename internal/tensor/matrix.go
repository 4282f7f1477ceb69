package tensor

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"
)

// Matrix is a batch of square complex matrices acting on 2^k amplitudes.
//
// Element (r, c) of batch element b lives at data[b*dim*dim + r*dim + c].
// Row and column indices are big-endian over the qubit support of the operator
// using the matrix: bit 0 corresponds to the last qubit of the support.
type Matrix struct {
	dim   int
	batch int
	data  []complex128
}

// NewMatrix wraps data as a batch of dim x dim matrices. dim must be a power of
// two and len(data) must equal dim*dim*batch.
func NewMatrix(dim, batch int, data []complex128) (*Matrix, error) {
	if dim < 1 || dim&(dim-1) != 0 {
		return nil, fmt.Errorf("%w: matrix dimension %d is not a power of two", ErrShapeMismatch, dim)
	}
	if batch < 1 {
		return nil, fmt.Errorf("%w: matrix batch %d", ErrShapeMismatch, batch)
	}
	if len(data) != dim*dim*batch {
		return nil, fmt.Errorf("%w: %d elements for %dx%d matrix with batch %d",
			ErrShapeMismatch, len(data), dim, dim, batch)
	}
	return &Matrix{dim: dim, batch: batch, data: data}, nil
}

// FromRows builds a single (batch 1) matrix from row slices.
func FromRows(rows [][]complex128) (*Matrix, error) {
	dim := len(rows)
	data := make([]complex128, 0, dim*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), dim)
		}
		data = append(data, row...)
	}
	return NewMatrix(dim, 1, data)
}

// FromReal builds a single (batch 1) matrix from real row slices.
func FromReal(rows [][]float64) (*Matrix, error) {
	crows := make([][]complex128, len(rows))
	for i, row := range rows {
		crows[i] = make([]complex128, len(row))
		for j, v := range row {
			crows[i][j] = complex(v, 0)
		}
	}
	return FromRows(crows)
}

// ZerosMatrix returns a zero matrix batch.
func ZerosMatrix(dim, batch int) *Matrix {
	return &Matrix{dim: dim, batch: batch, data: make([]complex128, dim*dim*batch)}
}

// Identity returns the dim x dim identity with batch 1.
func Identity(dim int) *Matrix {
	m := ZerosMatrix(dim, 1)
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return m
}

// Stack concatenates single matrices along the batch axis.
func Stack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: stack of zero matrices", ErrShapeMismatch)
	}
	dim := ms[0].dim
	batch := 0
	for _, m := range ms {
		if m.dim != dim {
			return nil, fmt.Errorf("%w: stack of %dx%d and %dx%d matrices", ErrShapeMismatch, dim, dim, m.dim, m.dim)
		}
		batch += m.batch
	}
	data := make([]complex128, 0, dim*dim*batch)
	for _, m := range ms {
		data = append(data, m.data...)
	}
	return &Matrix{dim: dim, batch: batch, data: data}, nil
}

// Dim returns the matrix side length.
func (m *Matrix) Dim() int { return m.dim }

// Batch returns the batch size.
func (m *Matrix) Batch() int { return m.batch }

// NumQubits returns log2(Dim()).
func (m *Matrix) NumQubits() int { return bits.TrailingZeros(uint(m.dim)) }

// Data returns the underlying elements. The slice must not be modified.
func (m *Matrix) Data() []complex128 { return m.data }

// At returns element (r, c) of batch element b.
func (m *Matrix) At(r, c, b int) complex128 {
	return m.data[b*m.dim*m.dim+r*m.dim+c]
}

// Slice returns batch element b as a batch-1 matrix (copy).
func (m *Matrix) Slice(b int) *Matrix {
	size := m.dim * m.dim
	data := make([]complex128, size)
	copy(data, m.data[b*size:(b+1)*size])
	return &Matrix{dim: m.dim, batch: 1, data: data}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]complex128, len(m.data))
	copy(data, m.data)
	return &Matrix{dim: m.dim, batch: m.batch, data: data}
}

// Broadcast returns the matrix stretched to the given batch size.
func (m *Matrix) Broadcast(batch int) (*Matrix, error) {
	if batch == m.batch {
		return m, nil
	}
	if m.batch != 1 {
		return nil, fmt.Errorf("%w: cannot broadcast matrix batch %d to %d", ErrShapeMismatch, m.batch, batch)
	}
	data := make([]complex128, 0, len(m.data)*batch)
	for b := 0; b < batch; b++ {
		data = append(data, m.data...)
	}
	return &Matrix{dim: m.dim, batch: batch, data: data}, nil
}

// Dagger returns the conjugate transpose of every batch element.
func (m *Matrix) Dagger() *Matrix {
	out := ZerosMatrix(m.dim, m.batch)
	size := m.dim * m.dim
	for b := 0; b < m.batch; b++ {
		off := b * size
		for r := 0; r < m.dim; r++ {
			for c := 0; c < m.dim; c++ {
				out.data[off+c*m.dim+r] = cmplx.Conj(m.data[off+r*m.dim+c])
			}
		}
	}
	return out
}

// Scale multiplies every element by alpha.
func (m *Matrix) Scale(alpha complex128) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= alpha
	}
	return out
}

// ScaleBatch multiplies batch element b by factors[BatchIndex(len(factors), b)].
func (m *Matrix) ScaleBatch(factors []complex128) (*Matrix, error) {
	batch, err := BroadcastBatch(m.batch, len(factors))
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	size := m.dim * m.dim
	out := ZerosMatrix(m.dim, batch)
	for b := 0; b < batch; b++ {
		src := BatchIndex(m.batch, b) * size
		f := factors[BatchIndex(len(factors), b)]
		for i := 0; i < size; i++ {
			out.data[b*size+i] = m.data[src+i] * f
		}
	}
	return out, nil
}

// Add returns m + other with batch broadcasting.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.dim != other.dim {
		return nil, fmt.Errorf("%w: cannot add %dx%d and %dx%d matrices", ErrShapeMismatch, m.dim, m.dim, other.dim, other.dim)
	}
	batch, err := BroadcastBatch(m.batch, other.batch)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	size := m.dim * m.dim
	out := ZerosMatrix(m.dim, batch)
	for b := 0; b < batch; b++ {
		ma := BatchIndex(m.batch, b) * size
		oa := BatchIndex(other.batch, b) * size
		for i := 0; i < size; i++ {
			out.data[b*size+i] = m.data[ma+i] + other.data[oa+i]
		}
	}
	return out, nil
}

// MatMul performs batched matrix multiplication a @ b.
//
// Batch sizes broadcast: [1] @ [B] -> [B], [B] @ [1] -> [B], [B] @ [B] -> [B].
func MatMul(a, b *Matrix) (*Matrix, error) {
	if a.dim != b.dim {
		return nil, fmt.Errorf("%w: matmul inner dimension mismatch: %d vs %d", ErrShapeMismatch, a.dim, b.dim)
	}
	batch, err := BroadcastBatch(a.batch, b.batch)
	if err != nil {
		return nil, fmt.Errorf("matmul: %w", err)
	}
	out := ZerosMatrix(a.dim, batch)
	batchMatmulComplex128(out.data, a.data, b.data, batch, a.batch, b.batch, a.dim)
	return out, nil
}

// batchMatmulComplex128 performs batched matrix multiplication of square n x n
// matrices with broadcasting over size-1 operand batches.
func batchMatmulComplex128(c, a, b []complex128, batchSize, batchA, batchB, n int) {
	matrixSize := n * n

	for batch := 0; batch < batchSize; batch++ {
		aOffset := BatchIndex(batchA, batch) * matrixSize
		bOffset := BatchIndex(batchB, batch) * matrixSize
		cOffset := batch * matrixSize

		for i := 0; i < n; i++ {
			for kIdx := 0; kIdx < n; kIdx++ {
				aik := a[aOffset+i*n+kIdx]
				if aik == 0 {
					continue
				}
				for j := 0; j < n; j++ {
					c[cOffset+i*n+j] += aik * b[bOffset+kIdx*n+j]
				}
			}
		}
	}
}

// Kron returns the Kronecker product a ⊗ b with batch broadcasting.
func Kron(a, b *Matrix) (*Matrix, error) {
	batch, err := BroadcastBatch(a.batch, b.batch)
	if err != nil {
		return nil, fmt.Errorf("kron: %w", err)
	}
	dim := a.dim * b.dim
	out := ZerosMatrix(dim, batch)
	for k := 0; k < batch; k++ {
		ab := BatchIndex(a.batch, k)
		bb := BatchIndex(b.batch, k)
		for ar := 0; ar < a.dim; ar++ {
			for ac := 0; ac < a.dim; ac++ {
				av := a.At(ar, ac, ab)
				if av == 0 {
					continue
				}
				for br := 0; br < b.dim; br++ {
					for bc := 0; bc < b.dim; bc++ {
						r := ar*b.dim + br
						c := ac*b.dim + bc
						out.data[k*dim*dim+r*dim+c] = av * b.At(br, bc, bb)
					}
				}
			}
		}
	}
	return out, nil
}

// Expand embeds a matrix acting on support into the space of fullSupport,
// acting as identity on the qubits of fullSupport outside support. Both
// supports follow the big-endian convention of Matrix.
func (m *Matrix) Expand(support, fullSupport []int) (*Matrix, error) {
	k := len(support)
	if m.dim != 1<<k {
		return nil, fmt.Errorf("%w: %dx%d matrix for support of %d qubits", ErrShapeMismatch, m.dim, m.dim, k)
	}
	full := len(fullSupport)
	position := make(map[int]int, full)
	for i, q := range fullSupport {
		if _, dup := position[q]; dup {
			return nil, fmt.Errorf("%w: qubit %d repeated in support %v", ErrShapeMismatch, q, fullSupport)
		}
		position[q] = i
	}

	// scatter[x] places the bits of a support index x at their full-space positions.
	subDim := 1 << k
	scatter := make([]int, subDim)
	mask := 0
	for j, q := range support {
		pos, ok := position[q]
		if !ok {
			return nil, fmt.Errorf("%w: qubit %d of support %v missing from %v", ErrShapeMismatch, q, support, fullSupport)
		}
		bit := 1 << (full - 1 - pos)
		mask |= bit
		for x := 0; x < subDim; x++ {
			if x>>(k-1-j)&1 == 1 {
				scatter[x] |= bit
			}
		}
	}
	if k == full && isIdentityPermutation(support, fullSupport) {
		return m, nil
	}

	gather := func(idx int) int {
		sub := 0
		for j, q := range support {
			if idx>>(full-1-position[q])&1 == 1 {
				sub |= 1 << (k - 1 - j)
			}
		}
		return sub
	}

	dim := 1 << full
	size := dim * dim
	out := ZerosMatrix(dim, m.batch)
	for b := 0; b < m.batch; b++ {
		for r := 0; r < dim; r++ {
			rest := r &^ mask
			sr := gather(r)
			for sc := 0; sc < subDim; sc++ {
				v := m.At(sr, sc, b)
				if v == 0 {
					continue
				}
				out.data[b*size+r*dim+(rest|scatter[sc])] = v
			}
		}
	}
	return out, nil
}

func isIdentityPermutation(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsHermitian reports whether every batch element equals its conjugate
// transpose within tol.
func (m *Matrix) IsHermitian(tol float64) bool {
	for b := 0; b < m.batch; b++ {
		for r := 0; r < m.dim; r++ {
			for c := r; c < m.dim; c++ {
				if cmplx.Abs(m.At(r, c, b)-cmplx.Conj(m.At(c, r, b))) > tol {
					return false
				}
			}
		}
	}
	return true
}

// MaxAbs returns the largest element magnitude over the batch.
func (m *Matrix) MaxAbs() float64 {
	maxAbs := 0.0
	for _, v := range m.data {
		maxAbs = math.Max(maxAbs, cmplx.Abs(v))
	}
	return maxAbs
}

// Round returns the matrix with elements stored at precision p.
func (m *Matrix) Round(p Precision) *Matrix {
	if p == Complex128 {
		return m
	}
	out := m.Clone()
	for i, v := range out.data {
		out.data[i] = p.round(v)
	}
	return out
}

// AllClose reports whether both matrices agree within atol + rtol*|other|.
// Batch sizes must be broadcastable.
func (m *Matrix) AllClose(other *Matrix, rtol, atol float64) bool {
	if m.dim != other.dim {
		return false
	}
	batch, err := BroadcastBatch(m.batch, other.batch)
	if err != nil {
		return false
	}
	for b := 0; b < batch; b++ {
		for r := 0; r < m.dim; r++ {
			for c := 0; c < m.dim; c++ {
				if !closeTo(m.At(r, c, BatchIndex(m.batch, b)), other.At(r, c, BatchIndex(other.batch, b)), rtol, atol) {
					return false
				}
			}
		}
	}
	return true
}

// ApplyVector returns m @ column for batch element b of m.
func (m *Matrix) ApplyVector(b int, column []complex128) []complex128 {
	out := make([]complex128, m.dim)
	off := b * m.dim * m.dim
	for r := 0; r < m.dim; r++ {
		var sum complex128
		for c := 0; c < m.dim; c++ {
			sum += m.data[off+r*m.dim+c] * column[c]
		}
		out[r] = sum
	}
	return out
}

// String renders every batch element.
func (m *Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix(dim=%d, batch=%d)", m.dim, m.batch)
	for b := 0; b < m.batch; b++ {
		for r := 0; r < m.dim; r++ {
			sb.WriteString("\n ")
			for c := 0; c < m.dim; c++ {
				fmt.Fprintf(&sb, " %.4f", m.At(r, c, b))
			}
		}
	}
	return sb.String()
}

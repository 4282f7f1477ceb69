package tensor

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// hermitianTolerance is the relative tolerance used to decide whether a
// generator may take the spectral path.
const hermitianTolerance = 1e-10

// spectrum holds the eigendecomposition of the real symmetric embedding
// [[Re G, -Im G], [Im G, Re G]] of a Hermitian d x d generator G. Every
// eigenvalue of G appears twice.
type spectrum struct {
	dim     int
	values  []float64
	vectors []float64 // 2d x 2d, columns are eigenvectors
}

// decomposeHermitian diagonalises the embedding of g with the symmetric
// eigensolver.
func decomposeHermitian(g []complex128, d int) (*spectrum, error) {
	n := 2 * d
	emb := make([]float64, n*n)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			// Symmetrise exactly; SymDense only reads the upper triangle.
			h := (g[r*d+c] + complex(real(g[c*d+r]), -imag(g[c*d+r]))) / 2
			re, im := real(h), imag(h)
			emb[r*n+c] = re
			emb[(r+d)*n+c+d] = re
			emb[r*n+c+d] = -im
			emb[(r+d)*n+c] = im
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(n, emb), true) {
		return nil, fmt.Errorf("symmetric eigensolver: factorization of %dx%d embedding failed", n, n)
	}
	var q mat.Dense
	eig.VectorsTo(&q)
	vectors := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			vectors[r*n+c] = q.At(r, c)
		}
	}
	return &spectrum{dim: d, values: eig.Values(nil), vectors: vectors}, nil
}

// EigenvaluesHermitian returns the ascending eigenvalues of every batch
// element of the Hermitian matrix m.
func EigenvaluesHermitian(m *Matrix) ([][]float64, error) {
	out := make([][]float64, m.batch)
	for b := range out {
		elem := m.Slice(b)
		if !elem.IsHermitian(hermitianTolerance * math.Max(1, elem.MaxAbs())) {
			return nil, fmt.Errorf("%w: batch element %d", ErrNotHermitian, b)
		}
		sp, err := decomposeHermitian(elem.data, m.dim)
		if err != nil {
			return nil, err
		}
		values := slices.Clone(sp.values)
		slices.Sort(values)
		// Every eigenvalue appears twice in the real embedding.
		out[b] = make([]float64, m.dim)
		for i := range out[b] {
			out[b][i] = (values[2*i] + values[2*i+1]) / 2
		}
	}
	return out, nil
}

// evolve returns exp(-i G t) = cos(G t) - i sin(G t). The spectral functions of
// the embedding are the embeddings of the spectral functions of G, so their
// left block columns carry the real and imaginary parts.
func (s *spectrum) evolve(t float64) []complex128 {
	d := s.dim
	n := 2 * d
	cosines := make([]float64, n)
	sines := make([]float64, n)
	for j, lambda := range s.values {
		cosines[j] = math.Cos(lambda * t)
		sines[j] = math.Sin(lambda * t)
	}
	// cosBlock and sinBlock hold the left n x d block column of Q f(Λt) Qᵀ.
	cosBlock := make([]float64, n*d)
	sinBlock := make([]float64, n*d)
	for r := 0; r < n; r++ {
		for c := 0; c < d; c++ {
			var cs, sn float64
			for j := 0; j < n; j++ {
				w := s.vectors[r*n+j] * s.vectors[c*n+j]
				cs += w * cosines[j]
				sn += w * sines[j]
			}
			cosBlock[r*d+c] = cs
			sinBlock[r*d+c] = sn
		}
	}
	u := make([]complex128, d*d)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			cosRe, cosIm := cosBlock[r*d+c], cosBlock[(r+d)*d+c]
			sinRe, sinIm := sinBlock[r*d+c], sinBlock[(r+d)*d+c]
			u[r*d+c] = complex(cosRe+sinIm, cosIm-sinRe)
		}
	}
	return u
}

// EvolutionOperator returns U_b = exp(-i G_b t_b) for every element of the
// broadcast batch of the generator g and the times t.
//
// Hermitian generator elements are diagonalised once and reused for every
// time; other elements fall back to Padé scaling and squaring.
func EvolutionOperator(g *Matrix, t []float64) (*Matrix, error) {
	batch, err := BroadcastBatch(g.batch, len(t))
	if err != nil {
		return nil, fmt.Errorf("evolution: %w", err)
	}
	d := g.dim
	size := d * d
	spectra := make([]*spectrum, g.batch)
	hermitian := make([]bool, g.batch)
	for gb := 0; gb < g.batch; gb++ {
		elem := g.Slice(gb)
		if !elem.IsHermitian(hermitianTolerance * math.Max(1, elem.MaxAbs())) {
			continue
		}
		hermitian[gb] = true
		sp, err := decomposeHermitian(elem.data, d)
		if err != nil {
			// The solver did not converge; the Padé path handles this element.
			continue
		}
		spectra[gb] = sp
	}

	out := ZerosMatrix(d, batch)
	for b := 0; b < batch; b++ {
		gb := BatchIndex(g.batch, b)
		tb := t[BatchIndex(len(t), b)]
		if sp := spectra[gb]; sp != nil {
			copy(out.data[b*size:], sp.evolve(tb))
			continue
		}
		a := make([]complex128, size)
		for i, v := range g.data[gb*size : (gb+1)*size] {
			a[i] = complex(0, -tb) * v
		}
		u, err := expmPade(a, d)
		if err != nil {
			return nil, fmt.Errorf("evolution of batch element %d (hermitian=%t): %w", b, hermitian[gb], err)
		}
		copy(out.data[b*size:], u)
	}
	return out, nil
}

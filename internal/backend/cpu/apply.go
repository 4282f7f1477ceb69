package cpu

import (
	"fmt"

	"github.com/born-ml/qsim/internal/parallel"
	"github.com/born-ml/qsim/internal/tensor"
)

// Apply contracts a (batched) 2^k x 2^k matrix onto the k qubit axes listed in
// support.
//
// The supported axes are addressed through precomputed strides, so the state
// is never transposed: for every configuration of the remaining n-k qubits the
// 2^k amplitudes are gathered, multiplied by the matrix and scattered back in
// canonical order. Bit 0 of the matrix index maps to the last qubit of support.
//
// Batch sizes broadcast: [Bs] x [1] -> [Bs], [1] x [Bm] -> [Bm], [B] x [B] -> [B].
func (cpu *CPUBackend) Apply(state *tensor.State, m *tensor.Matrix, support []int) (*tensor.State, error) {
	n := state.NumQubits()
	k := len(support)

	if err := tensor.ValidateSupport(support, n); err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	if m.Dim() != 1<<k {
		return nil, fmt.Errorf("apply: %w: %dx%d matrix on support %v", tensor.ErrShapeMismatch, m.Dim(), m.Dim(), support)
	}
	batch, err := tensor.BroadcastBatch(state.Batch(), m.Batch())
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	out := make([]complex128, state.Dim()*batch)
	contract(out, state.Data(), m.Data(), n, support, state.Batch(), m.Batch(), batch, cpu.parallel)
	return tensor.NewState(n, batch, out)
}

// contract is the typed kernel behind Apply.
func contract(out, src, mat []complex128, n int, support []int, batchS, batchM, batch int, cfg parallel.Config) {
	k := len(support)
	dim := 1 << k
	matSize := dim * dim

	// offsets[x] is the basis offset of support configuration x.
	offsets := make([]int, dim)
	inSupport := make([]bool, n)
	for j, q := range support {
		inSupport[q] = true
		stride := tensor.QubitStride(n, q)
		for x := 0; x < dim; x++ {
			if x>>(k-1-j)&1 == 1 {
				offsets[x] += stride
			}
		}
	}
	// free lists the strides of the remaining qubits, least significant first.
	free := make([]int, 0, n-k)
	for q := n - 1; q >= 0; q-- {
		if !inSupport[q] {
			free = append(free, tensor.QubitStride(n, q))
		}
	}

	parallel.ForChunk(1<<(n-k), func(start, end int) {
		gathered := make([]complex128, dim)
		for o := start; o < end; o++ {
			base := 0
			for j, stride := range free {
				if o>>j&1 == 1 {
					base += stride
				}
			}
			for b := 0; b < batch; b++ {
				sb := tensor.BatchIndex(batchS, b)
				mOff := tensor.BatchIndex(batchM, b) * matSize
				for x, off := range offsets {
					gathered[x] = src[(base+off)*batchS+sb]
				}
				for r, off := range offsets {
					row := mat[mOff+r*dim : mOff+(r+1)*dim]
					var sum complex128
					for c, v := range row {
						sum += v * gathered[c]
					}
					out[(base+off)*batch+b] = sum
				}
			}
		}
	}, cfg)
}

// ApplyDagger contracts the conjugate transpose of m onto support.
func (cpu *CPUBackend) ApplyDagger(state *tensor.State, m *tensor.Matrix, support []int) (*tensor.State, error) {
	return cpu.Apply(state, m.Dagger(), support)
}

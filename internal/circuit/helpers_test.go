package circuit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/qsim/internal/tensor"
)

const tol = 1e-10

// applyDense multiplies every batch element of state by the matching batch
// element of m.
func applyDense(t *testing.T, m *tensor.Matrix, state *tensor.State) *tensor.State {
	t.Helper()
	batch, err := tensor.BroadcastBatch(m.Batch(), state.Batch())
	require.NoError(t, err)
	require.Equal(t, state.Dim(), m.Dim())

	data := make([]complex128, state.Dim()*batch)
	for b := 0; b < batch; b++ {
		col := m.ApplyVector(tensor.BatchIndex(m.Batch(), b), state.Column(tensor.BatchIndex(state.Batch(), b)))
		for i, v := range col {
			data[i*batch+b] = v
		}
	}
	out, err := tensor.NewState(state.NumQubits(), batch, data)
	require.NoError(t, err)
	return out
}

func allQubits(n int) []int {
	qubits := make([]int, n)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

func randomValues(rng *rand.Rand, batch int, names ...string) Values {
	values := make(Values, len(names))
	for _, name := range names {
		vals := make([]float64, batch)
		for i := range vals {
			vals[i] = rng.Float64() * 6.28
		}
		values[name] = vals
	}
	return values
}

func mustMerge(t *testing.T, ops ...Operator) *Merge {
	t.Helper()
	m, err := NewMerge(ops...)
	require.NoError(t, err)
	return m
}

func mustProjector(t *testing.T, support []int, ket, bra string) *Primitive {
	t.Helper()
	p, err := Projector(support, ket, bra)
	require.NoError(t, err)
	return p
}

// finiteDifference returns (Tensor(θ+h) - Tensor(θ-h)) / 2h for a single
// named parameter with batch 1 values.
func finiteDifference(t *testing.T, op Operator, values Values, name string, support []int) *tensor.Matrix {
	t.Helper()
	const h = 1e-4
	shifted := func(delta float64) *tensor.Matrix {
		v := values.Clone()
		for i := range v[name] {
			v[name][i] += delta
		}
		m, err := Tensor(op, v, support)
		require.NoError(t, err)
		return m
	}
	plus := shifted(h)
	minus := shifted(-h)
	diff, err := plus.Add(minus.Scale(-1))
	require.NoError(t, err)
	return diff.Scale(complex(1/(2*h), 0))
}

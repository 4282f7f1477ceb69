package circuit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/qsim/internal/tensor"
)

func sampleTrees(t *testing.T) map[string]Operator {
	t.Helper()
	gen := NewOperatorGenerator(NewAdd(
		NewScale(NewSequence(Z(0), Z(2)), Named("j")),
		NewScale(X(1), Literal(0.7)),
	))
	return map[string]Operator{
		"primitive": CRY(2, 0, Named("a")),
		"scale":     NewScale(RX(1, Named("a")), Named("s")),
		"sequence": NewSequence(
			H(0), RX(1, Named("a")), CNOT(0, 2), RZ(2, Named("b")), U(1, Named("a"), Named("b"), Literal(0.2)),
		),
		"add": NewAdd(
			NewSequence(X(0), Z(2)),
			NewScale(CZ(1, 2), Named("s")),
			RY(1, Named("b")),
		),
		"merge": mustMerge(t,
			CRX(1, 2, Named("a")), CNOT(2, 1), CPHASE(2, 1, Named("b")), SWAP(1, 2),
		),
		"evolution": NewSequence(
			H(1),
			NewEvolution(gen, Named("time")),
			CPHASE(0, 1, Named("b")),
		),
		"nested": NewSequence(
			NewAdd(H(0), NewScale(Z(0), Literal(-0.5))),
			mustMerge(t, RY(2, Named("a")), PHASE(2, Named("b"))),
			NewScale(NewSequence(CRX(0, 2, Named("a")), Toffoli(2, 0, 1)), Named("s")),
		),
	}
}

func TestForwardMatchesTensor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 3
	for name, op := range sampleTrees(t) {
		t.Run(name, func(t *testing.T) {
			values := randomValues(rng, 2, "a", "b", "s", "j", "time")
			values["b"] = values["b"][:1]
			state := tensor.RandomState(n, 2, rng)

			got, err := Forward(op, state, values)
			require.NoError(t, err)

			m, err := Tensor(op, values, allQubits(n))
			require.NoError(t, err)
			want := applyDense(t, m, state)

			assert.True(t, got.AllClose(want, 1e-9, 1e-9))
		})
	}
}

func TestJacobianMatchesFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for name, op := range sampleTrees(t) {
		t.Run(name, func(t *testing.T) {
			values := randomValues(rng, 1, "a", "b", "s", "j", "time")
			for _, v := range values {
				v[0] /= 4
			}
			jac, err := Jacobian(op, values, allQubits(3))
			require.NoError(t, err)
			assert.ElementsMatch(t, op.ParamNames(), keys(jac))
			for _, param := range op.ParamNames() {
				fd := finiteDifference(t, op, values, param, allQubits(3))
				assert.True(t, jac[param].AllClose(fd, 1e-5, 1e-6), "d/d%s", param)
			}
		})
	}
}

func TestJacobianAccumulatesDuplicateNames(t *testing.T) {
	values := Values{"a": {0.8}}
	op := NewSequence(RX(0, Named("a")), RX(0, Named("a")))
	jac, err := Jacobian(op, values, nil)
	require.NoError(t, err)

	// RX(a) RX(a) = RX(2a), so the derivative is 2 RX'(2a).
	want, err := Jacobian(RX(0, Named("a")), Values{"a": {1.6}}, nil)
	require.NoError(t, err)
	assert.True(t, jac["a"].AllClose(want["a"].Scale(2), 0, tol))
}

func TestUnitaryNormalization(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	op := NewSequence(
		H(0), CNOT(0, 1), RX(2, Named("a")), CRZ(1, 3, Named("b")), Toffoli(0, 3, 2),
		U(3, Named("a"), Named("b"), Literal(0.4)), SWAP(0, 3), T(1), SDagger(2),
	)
	state := tensor.RandomState(4, 5, rng)
	out, err := Forward(op, state, randomValues(rng, 5, "a", "b"))
	require.NoError(t, err)
	assert.True(t, out.IsNormalized(1e-12))
	assert.Equal(t, 5, out.Batch())
}

func TestMergeEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	gates := []Operator{RX(0, Named("a")), RY(0, Named("b")), RZ(0, Named("c"))}
	merged := mustMerge(t, gates...)
	seq := NewSequence(gates...)

	for i := 0; i < 5; i++ {
		values := randomValues(rng, 3, "a", "b", "c")
		state := tensor.RandomState(2, 3, rng)
		want, err := Forward(seq, state, values)
		require.NoError(t, err)
		got, err := Forward(merged, state, values)
		require.NoError(t, err)
		assert.True(t, got.AllClose(want, 0, 1e-12))
	}
}

func TestMergeValidation(t *testing.T) {
	_, err := NewMerge(RX(0, Named("a")), RX(1, Named("a")))
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewMerge(CNOT(0, 1), X(0))
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewMerge()
	require.ErrorIs(t, err, ErrValidation)

	// Same qubits in a different order are accepted.
	m, err := NewMerge(CNOT(0, 1), CNOT(1, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, m.QubitSupport())
}

func TestSupports(t *testing.T) {
	seq := NewSequence(X(3), CNOT(2, 0))
	assert.Equal(t, []int{0, 2, 3}, seq.QubitSupport())
	add := NewAdd(Z(1), Z(0))
	assert.Equal(t, []int{0, 1}, add.QubitSupport())
	assert.Equal(t, []int{2, 0}, NewScale(CNOT(2, 0), Literal(2)).QubitSupport())
}

func TestParamNames(t *testing.T) {
	op := NewSequence(
		RX(0, Named("a")),
		NewScale(RY(1, Named("b")), Named("s")),
		RX(1, Named("a")),
		U(0, Named("c"), Literal(0.1), Named("b")),
	)
	assert.Equal(t, []string{"a", "s", "b", "c"}, op.ParamNames())
	assert.Empty(t, H(0).ParamNames())
}

func TestScaleLiteralAndNamed(t *testing.T) {
	state := tensor.ZeroState(1, 1)
	out, err := NewScale(X(0), Literal(2, 3)).Forward(state, nil)
	require.NoError(t, err)
	require.Equal(t, 2, out.Batch())
	assert.Equal(t, complex(2, 0), out.At(1, 0))
	assert.Equal(t, complex(3, 0), out.At(1, 1))

	_, err = NewScale(X(0), Named("s")).Forward(state, nil)
	require.ErrorIs(t, err, ErrUnboundParameter)
}

func TestAddErrors(t *testing.T) {
	state := tensor.ZeroState(2, 1)
	_, err := NewAdd().Forward(state, nil)
	require.ErrorIs(t, err, ErrValidation)
	_, err = Tensor(NewAdd(), nil, []int{0})
	require.ErrorIs(t, err, ErrValidation)

	// Children producing batches 2 and 3 cannot be summed.
	op := NewAdd(NewScale(X(0), Literal(1, 2)), NewScale(Z(0), Literal(1, 2, 3)))
	_, err = op.Forward(state, nil)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestForwardBatchMismatch(t *testing.T) {
	state := tensor.ZeroState(1, 3)
	_, err := Forward(RX(0, Named("a")), state, Values{"a": {0.1, 0.2}})
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = Forward(X(4), state, nil)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestPerBatchParameters(t *testing.T) {
	angles := []float64{0, math.Pi / 2, math.Pi}
	out, err := Forward(RX(0, Named("a")), tensor.ZeroState(1, 1), Values{"a": angles})
	require.NoError(t, err)
	require.Equal(t, 3, out.Batch())
	for b, theta := range angles {
		p1 := real(out.At(1, b))*real(out.At(1, b)) + imag(out.At(1, b))*imag(out.At(1, b))
		assert.InDelta(t, math.Pow(math.Sin(theta/2), 2), p1, tol)
	}
}

func keys(m map[string]*tensor.Matrix) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

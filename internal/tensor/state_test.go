package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroState(t *testing.T) {
	s := ZeroState(3, 2)
	assert.Equal(t, Shape{2, 2, 2, 2}, s.Shape())
	assert.Equal(t, complex(1, 0), s.At(0, 0))
	assert.Equal(t, complex(1, 0), s.At(0, 1))
	assert.True(t, s.IsNormalized(1e-12))
}

func TestUniformState(t *testing.T) {
	s := UniformState(4, 1)
	for i := 0; i < s.Dim(); i++ {
		assert.InDelta(t, 0.25, real(s.At(i, 0)), 1e-12)
	}
	assert.True(t, s.IsNormalized(1e-12))
}

func TestProductState(t *testing.T) {
	s, err := ProductState("10", 1)
	require.NoError(t, err)
	// Qubit 0 is the most significant bit.
	assert.Equal(t, complex(1, 0), s.At(2, 0))

	_, err = ProductState("1x", 1)
	require.Error(t, err)
}

func TestRandomStateIsNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := RandomState(5, 4, rng)
	assert.True(t, s.IsNormalized(1e-12))
	assert.Equal(t, 4, s.Batch())
}

func TestNewStateValidatesLength(t *testing.T) {
	_, err := NewState(2, 1, make([]complex128, 3))
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewState(1, 0, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewState(-2, 1, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStateBroadcastAndSum(t *testing.T) {
	s := ZeroState(1, 1)
	wide, err := s.Broadcast(3)
	require.NoError(t, err)
	assert.Equal(t, 3, wide.Batch())

	back, err := wide.SumToBatch(1)
	require.NoError(t, err)
	assert.Equal(t, complex(3, 0), back.At(0, 0))

	_, err = wide.Broadcast(2)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStateAddBroadcasts(t *testing.T) {
	a := ZeroState(2, 1)
	b := UniformState(2, 3)
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Batch())
	assert.InDelta(t, 1.5, real(sum.At(0, 2)), 1e-12)

	_, err = a.Add(ZeroState(3, 1))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = UniformState(2, 2).Add(b)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStateScaleBatch(t *testing.T) {
	s := ZeroState(1, 1)
	scaled, err := s.ScaleBatch([]complex128{2, 3})
	require.NoError(t, err)
	assert.Equal(t, complex(2, 0), scaled.At(0, 0))
	assert.Equal(t, complex(3, 0), scaled.At(0, 1))
}

func TestOverlap(t *testing.T) {
	zero := ZeroState(2, 1)
	uniform := UniformState(2, 1)
	ov, err := Overlap(zero, uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, ov[0], 1e-12)

	inner, err := Inner(uniform, uniform)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(inner[0]), 1e-12)
}

func TestStateRound(t *testing.T) {
	s, err := NewState(1, 1, []complex128{complex(1/math.Sqrt(3), 0), complex(0, math.Sqrt(2.0/3))})
	require.NoError(t, err)
	r := s.Round(Complex64)
	assert.NotEqual(t, s.At(0, 0), r.At(0, 0))
	assert.True(t, r.AllClose(s, 0, 1e-7))
	assert.Same(t, s, s.Round(Complex128))
}

package cpu

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/born-ml/qsim/internal/parallel"
	"github.com/born-ml/qsim/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

func mustMatrix(t *testing.T, rows [][]complex128) *tensor.Matrix {
	t.Helper()
	m, err := tensor.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return m
}

func pauliX(t *testing.T) *tensor.Matrix {
	return mustMatrix(t, [][]complex128{{0, 1}, {1, 0}})
}

func cnot(t *testing.T) *tensor.Matrix {
	return mustMatrix(t, [][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestCPUBackend_ApplyEndianness checks that qubit 0 is the most significant bit.
func TestCPUBackend_ApplyEndianness(t *testing.T) {
	backend := newTestBackend()
	x := pauliX(t)

	// X on qubit 0 of |00> gives |10> (basis index 2).
	out, err := backend.Apply(tensor.ZeroState(2, 1), x, []int{0})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.At(2, 0) != 1 {
		t.Errorf("X on qubit 0: expected amplitude 1 at index 2, got %v", out.At(2, 0))
	}

	// X on qubit 1 of |00> gives |01> (basis index 1).
	out, err = backend.Apply(tensor.ZeroState(2, 1), x, []int{1})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.At(1, 0) != 1 {
		t.Errorf("X on qubit 1: expected amplitude 1 at index 1, got %v", out.At(1, 0))
	}
}

// TestCPUBackend_ApplySupportOrder checks that bit 0 of the matrix index is
// the last qubit of the support.
func TestCPUBackend_ApplySupportOrder(t *testing.T) {
	backend := newTestBackend()
	gate := cnot(t)

	tests := []struct {
		name    string
		input   string
		support []int
		want    int
	}{
		{"control 0 set", "10", []int{0, 1}, 3},
		{"control 0 clear", "01", []int{0, 1}, 1},
		{"control 1 set", "01", []int{1, 0}, 3},
		{"control 1 clear", "10", []int{1, 0}, 2},
		{"spectator qubit", "101", []int{0, 2}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := tensor.ProductState(tt.input, 1)
			if err != nil {
				t.Fatalf("ProductState failed: %v", err)
			}
			out, err := backend.Apply(state, gate, tt.support)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if out.At(tt.want, 0) != 1 {
				t.Errorf("expected basis state %d, got %v", tt.want, out)
			}
		})
	}
}

// TestCPUBackend_ApplyMatchesDense compares the strided kernel against the
// dense expanded matrix on a random state.
func TestCPUBackend_ApplyMatchesDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state := tensor.RandomState(4, 3, rng)

	data := make([]complex128, 16)
	for i := range data {
		data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	m, err := tensor.NewMatrix(4, 1, data)
	if err != nil {
		t.Fatalf("NewMatrix failed: %v", err)
	}
	support := []int{3, 1}

	for _, cfg := range []parallel.Config{parallel.Sequential(), {Enabled: true, NumWorkers: 4, MinChunkSize: 1}} {
		backend := NewWithConfig(cfg)
		got, err := backend.Apply(state, m, support)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		full, err := m.Expand(support, []int{0, 1, 2, 3})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		for b := 0; b < state.Batch(); b++ {
			want := full.ApplyVector(0, state.Column(b))
			for i, w := range want {
				if cmplx.Abs(got.At(i, b)-w) > 1e-12 {
					t.Fatalf("parallel=%v batch %d index %d: got %v, want %v", cfg.Enabled, b, i, got.At(i, b), w)
				}
			}
		}
	}
}

// TestCPUBackend_ApplyBatchBroadcast tests [1] x [B] and [B] x [1] broadcasting.
func TestCPUBackend_ApplyBatchBroadcast(t *testing.T) {
	backend := newTestBackend()
	x := pauliX(t)
	batched, err := tensor.Stack(tensor.Identity(2), x, x)
	if err != nil {
		t.Fatalf("Stack failed: %v", err)
	}

	out, err := backend.Apply(tensor.ZeroState(1, 1), batched, []int{0})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Batch() != 3 {
		t.Fatalf("expected batch 3, got %d", out.Batch())
	}
	if out.At(0, 0) != 1 || out.At(1, 1) != 1 || out.At(1, 2) != 1 {
		t.Errorf("unexpected broadcast result: %v", out)
	}

	out, err = backend.Apply(tensor.ZeroState(1, 3), x, []int{0})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Batch() != 3 {
		t.Errorf("expected batch 3, got %d", out.Batch())
	}

	_, err = backend.Apply(tensor.ZeroState(1, 2), batched, []int{0})
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for batch 2 x 3, got %v", err)
	}
}

// TestCPUBackend_ApplyErrors tests support and dimension validation.
func TestCPUBackend_ApplyErrors(t *testing.T) {
	backend := newTestBackend()
	state := tensor.ZeroState(2, 1)

	tests := []struct {
		name    string
		m       *tensor.Matrix
		support []int
	}{
		{"qubit out of range", pauliX(t), []int{2}},
		{"negative qubit", pauliX(t), []int{-1}},
		{"duplicate qubit", cnot(t), []int{1, 1}},
		{"dimension mismatch", cnot(t), []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backend.Apply(state, tt.m, tt.support)
			if !errors.Is(err, tensor.ErrShapeMismatch) {
				t.Errorf("expected ErrShapeMismatch, got %v", err)
			}
		})
	}
}

// TestCPUBackend_ApplyDagger checks U†U = I on a state.
func TestCPUBackend_ApplyDagger(t *testing.T) {
	backend := newTestBackend()
	s := complex(1/math.Sqrt2, 0)
	u := mustMatrix(t, [][]complex128{{s, s * 1i}, {s * 1i, s}})

	state := tensor.UniformState(3, 1)
	forward, err := backend.Apply(state, u, []int{1})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	back, err := backend.ApplyDagger(forward, u, []int{1})
	if err != nil {
		t.Fatalf("ApplyDagger failed: %v", err)
	}
	if !back.AllClose(state, 0, 1e-12) {
		t.Errorf("U†U|ψ> != |ψ>: %v", back)
	}
	if !forward.IsNormalized(1e-12) {
		t.Errorf("unitary application changed the norm: %v", forward.Norms())
	}
}

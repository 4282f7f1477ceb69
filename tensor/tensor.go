// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/qsim/internal/tensor"
)

// Shape represents the dimensions of a batched state: (2, 2, ..., 2, batch).
type Shape = tensor.Shape

// Device represents the device where state data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    = tensor.CPU
	CUDA   = tensor.CUDA
	Vulkan = tensor.Vulkan
	Metal  = tensor.Metal
	WebGPU = tensor.WebGPU
)

// Precision selects the stored floating point width.
type Precision = tensor.Precision

// Precision constants.
const (
	Complex128 = tensor.Complex128
	Complex64  = tensor.Complex64
)

// State is a batch of state vectors.
type State = tensor.State

// Matrix is a batch of square operator matrices.
type Matrix = tensor.Matrix

// Errors.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrSingular      = tensor.ErrSingular
	ErrNotHermitian  = tensor.ErrNotHermitian
)

// NewState creates a state from amplitudes laid out as data[i*batch+b].
func NewState(nQubits, batch int, amplitudes []complex128) (*State, error) {
	return tensor.NewState(nQubits, batch, amplitudes)
}

// ZeroState returns batch copies of |0...0>.
func ZeroState(nQubits, batch int) *State {
	return tensor.ZeroState(nQubits, batch)
}

// UniformState returns batch copies of the uniform superposition.
func UniformState(nQubits, batch int) *State {
	return tensor.UniformState(nQubits, batch)
}

// ProductState returns the computational basis state named by bits,
// e.g. "0110".
func ProductState(bits string, batch int) (*State, error) {
	return tensor.ProductState(bits, batch)
}

// RandomState returns batch normalized states with Gaussian amplitudes.
func RandomState(nQubits, batch int, rng *rand.Rand) *State {
	return tensor.RandomState(nQubits, batch, rng)
}

// Inner returns <a|b> per batch element.
func Inner(a, b *State) ([]complex128, error) {
	return tensor.Inner(a, b)
}

// Overlap returns the fidelity |<a|b>|^2 per batch element.
func Overlap(a, b *State) ([]float64, error) {
	return tensor.Overlap(a, b)
}

// NewMatrix creates a matrix batch from data laid out as data[b*d*d+r*d+c].
func NewMatrix(dim, batch int, data []complex128) (*Matrix, error) {
	return tensor.NewMatrix(dim, batch, data)
}

// FromRows creates a batch 1 matrix from its rows.
func FromRows(rows [][]complex128) (*Matrix, error) {
	return tensor.FromRows(rows)
}

// Identity returns the dim x dim identity matrix.
func Identity(dim int) *Matrix {
	return tensor.Identity(dim)
}

// Expm returns the matrix exponential of every batch element of m.
func Expm(m *Matrix) (*Matrix, error) {
	return tensor.Expm(m)
}

// EigenvaluesHermitian returns the ascending eigenvalues of every batch
// element of a Hermitian matrix.
func EigenvaluesHermitian(m *Matrix) ([][]float64, error) {
	return tensor.EigenvaluesHermitian(m)
}

// Package ops defines the differentiable state operations recorded on a
// gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the contraction backend
//   - Backward pass: computes input cotangents given the output cotangent
//
// Cotangents follow the real-loss convention: for a loss L and a complex state
// z, the cotangent g satisfies dL = Re<g, dz>. A linear map z = M psi
// therefore propagates g_psi = M† g_z.
//
// Supported operations:
//   - ApplyOp: matrix contraction on a qubit support (g_in = M† g_out)
//   - ScaleOp: per-batch real scaling (g_in = s g_out)
//   - AddOp: state addition (g_a = g_b = g_out)
package ops

import "github.com/born-ml/qsim/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input cotangents during the backward pass.
type Operation interface {
	// Backward computes cotangents for inputs given the output cotangent.
	// Returns a slice of cotangents corresponding to each input state, reduced
	// to the input batch sizes.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad *tensor.State, backend tensor.Backend) ([]*tensor.State, error)

	// Inputs returns the input states for this operation.
	Inputs() []*tensor.State

	// Output returns the state produced by this operation.
	Output() *tensor.State
}

// ParametricOperation is an operation that depends on named parameters.
//
// The tape collects parameter contributions after calling Backward.
type ParametricOperation interface {
	Operation

	// ParamGrads returns, for every parameter the operation depends on, the
	// per-output-batch contribution dL/dθ_b given the output cotangent.
	ParamGrads(outputGrad *tensor.State, backend tensor.Backend) (map[string][]float64, error)
}

package ops

import (
	"fmt"
	"slices"

	"github.com/born-ml/qsim/internal/tensor"
)

// ApplyOp represents a matrix contraction: output = M input on a qubit
// support.
//
// Backward pass:
//   - grad_input = M† grad_output, summed over broadcast batch elements
//   - dL/dθ_b = Re<grad_output_b, (dM/dθ)_b input_b> for every parameter θ
type ApplyOp struct {
	input    *tensor.State
	output   *tensor.State
	matrix   *tensor.Matrix
	support  []int
	jacobian map[string]*tensor.Matrix // dM/dθ per parameter name; may be empty
}

// NewApplyOp creates a new ApplyOp. jacobian holds the derivative of matrix
// with respect to every named parameter it depends on.
func NewApplyOp(input, output *tensor.State, matrix *tensor.Matrix, support []int, jacobian map[string]*tensor.Matrix) *ApplyOp {
	return &ApplyOp{
		input:    input,
		output:   output,
		matrix:   matrix,
		support:  slices.Clone(support),
		jacobian: jacobian,
	}
}

// Backward propagates the cotangent through M†.
func (op *ApplyOp) Backward(outputGrad *tensor.State, backend tensor.Backend) ([]*tensor.State, error) {
	grad, err := backend.Apply(outputGrad, op.matrix.Dagger(), op.support)
	if err != nil {
		return nil, fmt.Errorf("apply backward: %w", err)
	}
	grad, err = reduceBroadcast(grad, op.input)
	if err != nil {
		return nil, err
	}
	return []*tensor.State{grad}, nil
}

// ParamGrads returns Re<grad_output, dM/dθ input> per output batch element.
func (op *ApplyOp) ParamGrads(outputGrad *tensor.State, backend tensor.Backend) (map[string][]float64, error) {
	grads := make(map[string][]float64, len(op.jacobian))
	for name, d := range op.jacobian {
		dPsi, err := backend.Apply(op.input, d, op.support)
		if err != nil {
			return nil, fmt.Errorf("apply derivative for %q: %w", name, err)
		}
		if grads[name], err = realInner(outputGrad, dPsi); err != nil {
			return nil, fmt.Errorf("apply derivative for %q: %w", name, err)
		}
	}
	return grads, nil
}

// Inputs returns [input].
func (op *ApplyOp) Inputs() []*tensor.State {
	return []*tensor.State{op.input}
}

// Output returns M input.
func (op *ApplyOp) Output() *tensor.State {
	return op.output
}

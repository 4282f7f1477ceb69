package ops

import "github.com/born-ml/qsim/internal/tensor"

// AddOp represents a state addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// Note: If batch broadcasting was used in forward pass, cotangents are
// summed over the batch to match the input batch sizes.
type AddOp struct {
	inputs []*tensor.State // [a, b]
	output *tensor.State   // a + b
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.State) *AddOp {
	return &AddOp{
		inputs: []*tensor.State{a, b},
		output: output,
	}
}

// Backward computes input cotangents for addition.
// Since d(a+b)/da = d(a+b)/db = 1, the cotangent flows equally to both inputs.
func (op *AddOp) Backward(outputGrad *tensor.State, _ tensor.Backend) ([]*tensor.State, error) {
	a, b := op.inputs[0], op.inputs[1]

	gradA, err := reduceBroadcast(outputGrad, a)
	if err != nil {
		return nil, err
	}
	gradB, err := reduceBroadcast(outputGrad, b)
	if err != nil {
		return nil, err
	}
	return []*tensor.State{gradA, gradB}, nil
}

// Inputs returns the input states [a, b].
func (op *AddOp) Inputs() []*tensor.State {
	return op.inputs
}

// Output returns the state a + b.
func (op *AddOp) Output() *tensor.State {
	return op.output
}

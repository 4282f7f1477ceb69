package ops

import (
	"fmt"

	"github.com/born-ml/qsim/internal/tensor"
)

// ScaleOp represents per-batch real scaling: output_b = s_b input_b.
//
// Backward pass:
//   - grad_input = s grad_output
//   - dL/ds_b = Re<grad_output_b, input_b> when s is a named parameter
type ScaleOp struct {
	input   *tensor.State
	output  *tensor.State
	factors []float64
	param   string // Parameter name; empty for literal factors.
}

// NewScaleOp creates a new ScaleOp. param is the name of the scale parameter,
// or empty for a literal scale.
func NewScaleOp(input, output *tensor.State, factors []float64, param string) *ScaleOp {
	return &ScaleOp{input: input, output: output, factors: factors, param: param}
}

// Backward scales the cotangent by the same factors.
func (op *ScaleOp) Backward(outputGrad *tensor.State, _ tensor.Backend) ([]*tensor.State, error) {
	factors := make([]complex128, len(op.factors))
	for i, f := range op.factors {
		factors[i] = complex(f, 0)
	}
	grad, err := outputGrad.ScaleBatch(factors)
	if err != nil {
		return nil, fmt.Errorf("scale backward: %w", err)
	}
	grad, err = reduceBroadcast(grad, op.input)
	if err != nil {
		return nil, err
	}
	return []*tensor.State{grad}, nil
}

// ParamGrads returns Re<grad_output, input> per output batch element.
func (op *ScaleOp) ParamGrads(outputGrad *tensor.State, _ tensor.Backend) (map[string][]float64, error) {
	if op.param == "" {
		return nil, nil
	}
	grad, err := realInner(outputGrad, op.input)
	if err != nil {
		return nil, fmt.Errorf("scale derivative for %q: %w", op.param, err)
	}
	return map[string][]float64{op.param: grad}, nil
}

// Inputs returns [input].
func (op *ScaleOp) Inputs() []*tensor.State {
	return []*tensor.State{op.input}
}

// Output returns s input.
func (op *ScaleOp) Output() *tensor.State {
	return op.output
}

package ops

import (
	"fmt"

	"github.com/born-ml/qsim/internal/tensor"
)

// reduceBroadcast reduces a cotangent to the batch size of the input it flows
// to. This is necessary when batch broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: psi[batch=1] x M[batch=4] -> out[batch=4]  (psi was broadcast)
//	Backward: grad_out[batch=4] -> grad_psi[batch=1]     (sum over the batch)
func reduceBroadcast(grad *tensor.State, target *tensor.State) (*tensor.State, error) {
	if grad.Batch() == target.Batch() {
		return grad, nil
	}
	reduced, err := grad.SumToBatch(target.Batch())
	if err != nil {
		return nil, fmt.Errorf("reduce cotangent: %w", err)
	}
	return reduced, nil
}

// realInner returns Re<a_b, c_b> for every broadcast batch element.
func realInner(a, c *tensor.State) ([]float64, error) {
	inner, err := tensor.Inner(a, c)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(inner))
	for i, v := range inner {
		out[i] = real(v)
	}
	return out, nil
}

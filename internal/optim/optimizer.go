// Package optim implements gradient-based optimizers for variational circuits.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: a variational loop driving an expectation evaluator
//
// Optimizers update circuit.Values in place from the gradient maps returned
// by the expectation evaluator.
//
// Example usage:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//
//	for range steps {
//	    res, err := evaluator.Expectation(circ, state, values, obs, expectation.Adjoint)
//	    if err != nil {
//	        return err
//	    }
//	    if err := optimizer.Step(values, res.Gradients); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameter values based on computed gradients to
// minimize an energy.
type Optimizer interface {
	// Step applies gradient updates to values in place.
	//
	// Parameters without a gradient are left unchanged. A gradient whose
	// length differs from the bound values is an error.
	Step(values circuit.Values, grads map[string][]float64) error

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// checkGradients verifies that every gradient of a bound parameter has one
// entry per bound value.
func checkGradients(values circuit.Values, grads map[string][]float64) error {
	for name, grad := range grads {
		param, ok := values[name]
		if ok && len(grad) != len(param) {
			return fmt.Errorf("%w: parameter %q has %d values, gradient has %d",
				tensor.ErrShapeMismatch, name, len(param), len(grad))
		}
	}
	return nil
}

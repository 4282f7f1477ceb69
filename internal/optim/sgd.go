package optim

import (
	"slices"

	"github.com/born-ml/qsim/internal/circuit"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.1,
//	    Momentum: 0.9,
//	})
type SGD struct {
	lr         float64
	momentum   float64
	velocities map[string][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[string][]float64),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped.
func (s *SGD) Step(values circuit.Values, grads map[string][]float64) error {
	if err := checkGradients(values, grads); err != nil {
		return err
	}
	for name, param := range values {
		grad, ok := grads[name]
		if !ok {
			// Parameter didn't participate in the circuit, skip
			continue
		}

		if s.momentum == 0 {
			for i, g := range grad {
				param[i] -= s.lr * g
			}
			continue
		}

		velocity, exists := s.velocities[name]
		if !exists || len(velocity) != len(param) {
			velocity = make([]float64, len(param))
			s.velocities[name] = velocity
		}
		for i, g := range grad {
			velocity[i] = s.momentum*velocity[i] + g
			param[i] -= s.lr * velocity[i]
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns a copy of the velocity buffers keyed by parameter name.
// Without momentum, returns an empty map.
func (s *SGD) StateDict() map[string][]float64 {
	state := make(map[string][]float64, len(s.velocities))
	for name, v := range s.velocities {
		state[name] = slices.Clone(v)
	}
	return state
}

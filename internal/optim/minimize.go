package optim

import (
	"fmt"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/expectation"
	"github.com/born-ml/qsim/internal/tensor"
)

// Minimize runs steps iterations of gradient descent on the total energy
// sum_b <psi_b|O|psi_b> of circ(state), updating values in place.
//
// The returned trace holds the total energy before every step, followed by
// the energy after the last step.
func Minimize(
	evaluator *expectation.Evaluator,
	circ circuit.Operator,
	state *tensor.State,
	observable circuit.Operator,
	values circuit.Values,
	opt Optimizer,
	steps int,
	mode expectation.DiffMode,
) ([]float64, error) {
	trace := make([]float64, 0, steps+1)
	for i := 0; i < steps; i++ {
		res, err := evaluator.Expectation(circ, state, values, observable, mode)
		if err != nil {
			return trace, fmt.Errorf("step %d: %w", i, err)
		}
		trace = append(trace, res.Total())
		if err := opt.Step(values, res.Gradients); err != nil {
			return trace, fmt.Errorf("step %d: %w", i, err)
		}
	}
	energies, err := evaluator.Evaluate(circ, state, values, observable)
	if err != nil {
		return trace, err
	}
	var total float64
	for _, e := range energies {
		total += e
	}
	return append(trace, total), nil
}

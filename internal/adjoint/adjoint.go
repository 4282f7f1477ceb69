// Package adjoint implements adjoint differentiation of unitary circuits.
//
// Adjoint differentiation keeps two states instead of a tape: the output state
// psi and the co-state lambda = O psi. Walking the circuit backwards, each leaf
// U is undone on both states and contributes 2 Re<lambda|dU/dθ|psi> to the
// gradient of its parameters. Memory is constant in the circuit depth, at the
// price of requiring every leaf to be unitary.
package adjoint

import (
	"fmt"

	"github.com/born-ml/qsim/internal/backend/cpu"
	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

// ErrDiffModeUnsupported is returned for trees adjoint differentiation cannot
// handle: Scale and Add nodes, non-unitary primitives, evolutions with a
// non-Hermitian generator and observables with named parameters.
var ErrDiffModeUnsupported = circuit.ErrDiffModeUnsupported

// Config configures adjoint differentiation.
type Config struct {
	// Backend contracts leaf matrices onto states.
	Backend tensor.Backend
}

// DefaultConfig returns a Config using the CPU backend.
func DefaultConfig() Config {
	return Config{Backend: cpu.New()}
}

// step is a leaf of the flattened circuit with its forward matrix.
type step struct {
	op      circuit.Operator
	support []int
	matrix  *tensor.Matrix
	dagger  *tensor.Matrix
}

// Gradient computes E_b = Re<psi_b|O|psi_b> for psi = circ(state) and the
// gradient of sum_b E_b with respect to every named parameter of circ bound in
// values.
//
// A parameter bound to a single value receives the sum over the batch, a
// per-batch parameter receives one derivative per batch element. Parameters
// used by several leaves accumulate the contributions of every leaf.
func Gradient(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
	cfg Config,
) ([]float64, map[string][]float64, error) {
	if cfg.Backend == nil {
		cfg.Backend = cpu.New()
	}
	if names := observable.ParamNames(); len(names) > 0 {
		return nil, nil, fmt.Errorf("%w: observable has parameters %v", ErrDiffModeUnsupported, names)
	}

	leaves, err := flatten(circ, values, nil)
	if err != nil {
		return nil, nil, err
	}

	// Forward sweep.
	steps := make([]step, len(leaves))
	psi := state
	for i, leaf := range leaves {
		m, err := leaf.Unitary(values)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", leaf.Name(), err)
		}
		steps[i] = step{op: leaf, support: leaf.QubitSupport(), matrix: m, dagger: m.Dagger()}
		if psi, err = cfg.Backend.Apply(psi, m, steps[i].support); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", leaf.Name(), err)
		}
	}

	evaluator := circuit.NewEvaluator(circuit.Config{Backend: cfg.Backend})
	lambda, err := evaluator.Forward(observable, psi, values)
	if err != nil {
		return nil, nil, fmt.Errorf("observable: %w", err)
	}
	inner, err := tensor.Inner(psi, lambda)
	if err != nil {
		return nil, nil, err
	}
	energies := make([]float64, len(inner))
	for b, v := range inner {
		energies[b] = real(v)
	}

	grads := make(map[string][]float64)
	for _, name := range circ.ParamNames() {
		if vals, ok := values[name]; ok {
			grads[name] = make([]float64, len(vals))
		}
	}

	// Reverse sweep.
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if psi, err = cfg.Backend.Apply(psi, s.dagger, s.support); err != nil {
			return nil, nil, err
		}
		if len(s.op.ParamNames()) > 0 {
			if err := accumulate(grads, s, psi, lambda, values, cfg.Backend); err != nil {
				return nil, nil, err
			}
		}
		if i > 0 {
			if lambda, err = cfg.Backend.Apply(lambda, s.dagger, s.support); err != nil {
				return nil, nil, err
			}
		}
	}

	return energies, grads, nil
}

// accumulate adds 2 Re<lambda|dU/dθ|psi> of one leaf to grads. psi is the
// input state of the leaf and lambda the co-state at its output.
func accumulate(
	grads map[string][]float64,
	s step,
	psi, lambda *tensor.State,
	values circuit.Values,
	backend tensor.Backend,
) error {
	jac, err := circuit.Jacobian(s.op, values, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", s.op.Name(), err)
	}
	for name, d := range jac {
		acc, ok := grads[name]
		if !ok {
			continue
		}
		dpsi, err := backend.Apply(psi, d, s.support)
		if err != nil {
			return err
		}
		inner, err := tensor.Inner(lambda, dpsi)
		if err != nil {
			return err
		}
		if len(acc) != 1 && len(acc) != len(inner) {
			return fmt.Errorf("%w: parameter %q has %d values, circuit batch is %d",
				tensor.ErrShapeMismatch, name, len(acc), len(inner))
		}
		for b, v := range inner {
			acc[tensor.BatchIndex(len(acc), b)] += 2 * real(v)
		}
	}
	return nil
}

// flatten appends the leaves of op in application order, rejecting nodes the
// reverse sweep cannot undo.
func flatten(op circuit.Operator, values circuit.Values, leaves []circuit.Operator) ([]circuit.Operator, error) {
	if seq, ok := op.(*circuit.Sequence); ok {
		for _, child := range seq.Children() {
			var err error
			if leaves, err = flatten(child, values, leaves); err != nil {
				return nil, err
			}
		}
		return leaves, nil
	}
	if err := checkUnitary(op, values); err != nil {
		return nil, err
	}
	return append(leaves, op), nil
}

func checkUnitary(op circuit.Operator, values circuit.Values) error {
	switch node := op.(type) {
	case *circuit.Primitive:
		if !node.IsUnitary() {
			return fmt.Errorf("%w: %s is not unitary", ErrDiffModeUnsupported, node.Name())
		}
		return nil
	case *circuit.Sequence:
		for _, child := range node.Children() {
			if err := checkUnitary(child, values); err != nil {
				return err
			}
		}
		return nil
	case *circuit.Merge:
		for _, child := range node.Children() {
			if err := checkUnitary(child, values); err != nil {
				return err
			}
		}
		return nil
	case *circuit.Evolution:
		hermitian, err := node.IsHermitian(values)
		if err != nil {
			return err
		}
		if !hermitian {
			return fmt.Errorf("%w: evolution generator is not Hermitian", ErrDiffModeUnsupported)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s node", ErrDiffModeUnsupported, op.Name())
	}
}

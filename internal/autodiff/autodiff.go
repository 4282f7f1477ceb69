// Package autodiff implements standard reverse-mode differentiation of operator
// trees using the decorator pattern.
//
// AutodiffBackend wraps any contraction backend and adds gradient tracking
// capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend wraps any tensor.Backend
//   - GradientTape: Records operations during forward pass, retaining every
//     intermediate state
//   - Operation interface: Each op (Apply, Scale, Add) implements backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	energies, grads, err := backend.Expectation(circ, obs, state, values)
package autodiff

import (
	"fmt"

	"github.com/born-ml/qsim/internal/autodiff/ops"
	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
type AutodiffBackend struct {
	inner tensor.Backend // Wrapped backend
	tape  *GradientTape  // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New(backend tensor.Backend) *AutodiffBackend {
	return &AutodiffBackend{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend) Inner() tensor.Backend {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend) Device() tensor.Device {
	return b.inner.Device()
}

// Apply contracts m onto support and records a parameter-free ApplyOp.
func (b *AutodiffBackend) Apply(state *tensor.State, m *tensor.Matrix, support []int) (*tensor.State, error) {
	return b.ApplyDifferentiable(state, m, support, nil)
}

// ApplyDifferentiable contracts m onto support and records an ApplyOp that
// carries the derivatives of m with respect to its named parameters.
func (b *AutodiffBackend) ApplyDifferentiable(
	state *tensor.State,
	m *tensor.Matrix,
	support []int,
	jacobian map[string]*tensor.Matrix,
) (*tensor.State, error) {
	result, err := b.inner.Apply(state, m, support)
	if err != nil {
		return nil, err
	}
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewApplyOp(state, result, m, support, jacobian))
	}
	return result, nil
}

// Scale multiplies batch element b of state by factors[b] and records the
// operation. param names the scale parameter; empty for literals.
func (b *AutodiffBackend) Scale(state *tensor.State, factors []float64, param string) (*tensor.State, error) {
	cf := make([]complex128, len(factors))
	for i, f := range factors {
		cf[i] = complex(f, 0)
	}
	result, err := state.ScaleBatch(cf)
	if err != nil {
		return nil, err
	}
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewScaleOp(state, result, factors, param))
	}
	return result, nil
}

// Add returns x + y and records the operation.
func (b *AutodiffBackend) Add(x, y *tensor.State) (*tensor.State, error) {
	result, err := x.Add(y)
	if err != nil {
		return nil, err
	}
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(x, y, result))
	}
	return result, nil
}

// Forward evaluates op on state, recording every leaf contraction, scaling and
// addition on the tape when it is recording.
//
// Leaves (Primitive, Merge, Evolution) are contracted with their full matrix
// and carry their Jacobian; Scale and Add nodes are recorded as ScaleOp and
// AddOp, so every node variant is differentiable.
func (b *AutodiffBackend) Forward(op circuit.Operator, state *tensor.State, values circuit.Values) (*tensor.State, error) {
	switch node := op.(type) {
	case *circuit.Primitive, *circuit.Merge, *circuit.Evolution:
		m, err := op.Unitary(values)
		if err != nil {
			return nil, err
		}
		var jac map[string]*tensor.Matrix
		if len(op.ParamNames()) > 0 {
			if jac, err = circuit.Jacobian(op, values, nil); err != nil {
				return nil, err
			}
		}
		out, err := b.ApplyDifferentiable(state, m, op.QubitSupport(), jac)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.Name(), err)
		}
		return out, nil

	case *circuit.Scale:
		out, err := b.Forward(node.Child(), state, values)
		if err != nil {
			return nil, err
		}
		param := node.Param()
		factors, err := param.Resolve(values)
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		return b.Scale(out, factors, param.Name)

	case *circuit.Sequence:
		out := state
		for _, child := range node.Children() {
			var err error
			if out, err = b.Forward(child, out, values); err != nil {
				return nil, err
			}
		}
		return out, nil

	case *circuit.Add:
		children := node.Children()
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: add of zero operators", circuit.ErrValidation)
		}
		var sum *tensor.State
		for i, child := range children {
			out, err := b.Forward(child, state, values)
			if err != nil {
				return nil, err
			}
			if sum == nil {
				sum = out
				continue
			}
			if sum, err = b.Add(sum, out); err != nil {
				return nil, fmt.Errorf("add child %d (%s): %w", i, child.Name(), err)
			}
		}
		return sum, nil

	default:
		return nil, fmt.Errorf("%w: unknown operator %T", circuit.ErrValidation, op)
	}
}

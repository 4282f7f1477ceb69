package circuit

import (
	"fmt"

	"github.com/born-ml/qsim/internal/tensor"
)

// Tensor returns the dense matrix of op over fullSupport, acting as identity on
// the qubits of fullSupport that op does not touch. A nil fullSupport selects
// the operator's own support.
//
// For every tree and binding, Forward(op, state, values) equals the matrix
// Tensor(op, values, allQubits) applied to state.
func Tensor(op Operator, values Values, fullSupport []int) (*tensor.Matrix, error) {
	if fullSupport == nil {
		fullSupport = op.QubitSupport()
	}

	switch node := op.(type) {
	case *Primitive:
		m, err := node.matrix(values)
		if err != nil {
			return nil, err
		}
		return expand(node, m, fullSupport)

	case *Scale:
		m, err := Tensor(node.child, values, fullSupport)
		if err != nil {
			return nil, err
		}
		factors, err := scaleFactors(node.param, values)
		if err != nil {
			return nil, err
		}
		return m.ScaleBatch(factors)

	case *Sequence:
		return product(node.children, values, fullSupport)

	case *Merge:
		return product(node.children, values, fullSupport)

	case *Add:
		if len(node.children) == 0 {
			return nil, fmt.Errorf("%w: add of zero operators", ErrValidation)
		}
		var sum *tensor.Matrix
		for i, child := range node.children {
			m, err := Tensor(child, values, fullSupport)
			if err != nil {
				return nil, err
			}
			if sum == nil {
				sum = m
				continue
			}
			if sum, err = sum.Add(m); err != nil {
				return nil, fmt.Errorf("add child %d (%s): %w", i, child.Name(), err)
			}
		}
		return sum, nil

	case *Evolution:
		u, err := node.matrix(values)
		if err != nil {
			return nil, err
		}
		return expand(node, u, fullSupport)

	default:
		return nil, fmt.Errorf("%w: unknown operator %T", ErrValidation, op)
	}
}

// product returns M_last ... M_first for children applied in order.
func product(children []Operator, values Values, fullSupport []int) (*tensor.Matrix, error) {
	acc := tensor.Identity(1 << len(fullSupport))
	for _, child := range children {
		m, err := Tensor(child, values, fullSupport)
		if err != nil {
			return nil, err
		}
		if acc, err = tensor.MatMul(m, acc); err != nil {
			return nil, fmt.Errorf("%s: %w", child.Name(), err)
		}
	}
	return acc, nil
}

func expand(op Operator, m *tensor.Matrix, fullSupport []int) (*tensor.Matrix, error) {
	out, err := m.Expand(op.QubitSupport(), fullSupport)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name(), err)
	}
	return out, nil
}

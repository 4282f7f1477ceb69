package circuit

import (
	"fmt"

	"github.com/born-ml/qsim/internal/tensor"
)

// Retarget returns a copy of op whose leaves store their matrices at the given
// precision on the given device. The input tree is not modified.
//
// Only tensor.CPU has a contraction backend.
func Retarget(op Operator, precision tensor.Precision, device tensor.Device) (Operator, error) {
	if device != tensor.CPU {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDevice, device)
	}
	return retarget(op, precision)
}

func retarget(op Operator, precision tensor.Precision) (Operator, error) {
	switch node := op.(type) {
	case *Primitive:
		out := *node
		out.precision = precision
		return &out, nil

	case *Scale:
		child, err := retarget(node.child, precision)
		if err != nil {
			return nil, err
		}
		return NewScale(child, node.param), nil

	case *Sequence:
		children, err := retargetAll(node.children, precision)
		if err != nil {
			return nil, err
		}
		return NewSequence(children...), nil

	case *Add:
		children, err := retargetAll(node.children, precision)
		if err != nil {
			return nil, err
		}
		return NewAdd(children...), nil

	case *Merge:
		children, err := retargetAll(node.children, precision)
		if err != nil {
			return nil, err
		}
		return NewMerge(children...)

	case *Evolution:
		gen := *node.generator
		if gen.kind == GeneratorTensor {
			gen.matrix = gen.matrix.Round(precision)
		} else {
			genOp, err := retarget(gen.op, precision)
			if err != nil {
				return nil, err
			}
			gen.op = genOp
		}
		return &Evolution{generator: &gen, time: node.time, precision: precision}, nil

	default:
		return nil, fmt.Errorf("%w: unknown operator %T", ErrValidation, op)
	}
}

func retargetAll(ops []Operator, precision tensor.Precision) ([]Operator, error) {
	out := make([]Operator, len(ops))
	for i, op := range ops {
		var err error
		if out[i], err = retarget(op, precision); err != nil {
			return nil, err
		}
	}
	return out, nil
}

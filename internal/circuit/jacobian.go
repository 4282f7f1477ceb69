package circuit

import (
	"fmt"

	"github.com/born-ml/qsim/internal/tensor"
)

// Jacobian returns the derivative of Tensor(op, values, support) with respect
// to every named parameter of op.
//
// Batch element b of the result for name is dM_b/dθ_b, where θ_b is the value
// of name used by batch element b. A name used several times in the tree
// receives the sum of the contributions of every occurrence.
func Jacobian(op Operator, values Values, support []int) (map[string]*tensor.Matrix, error) {
	_, jac, err := jacobian(op, values, support)
	return jac, err
}

// jacobian returns Tensor(op, values, fullSupport) together with its
// derivatives.
func jacobian(op Operator, values Values, fullSupport []int) (*tensor.Matrix, map[string]*tensor.Matrix, error) {
	if fullSupport == nil {
		fullSupport = op.QubitSupport()
	}
	jac := make(map[string]*tensor.Matrix)

	switch node := op.(type) {
	case *Primitive:
		m, err := Tensor(node, values, fullSupport)
		if err != nil {
			return nil, nil, err
		}
		for i, param := range node.params {
			if !param.IsNamed() {
				continue
			}
			d, err := node.derivative(i, values)
			if err != nil {
				return nil, nil, err
			}
			if d, err = expand(node, d, fullSupport); err != nil {
				return nil, nil, err
			}
			if err := accumulate(jac, param.Name, d); err != nil {
				return nil, nil, err
			}
		}
		return m, jac, nil

	case *Scale:
		m, childJac, err := jacobian(node.child, values, fullSupport)
		if err != nil {
			return nil, nil, err
		}
		factors, err := scaleFactors(node.param, values)
		if err != nil {
			return nil, nil, err
		}
		for name, d := range childJac {
			if jac[name], err = d.ScaleBatch(factors); err != nil {
				return nil, nil, err
			}
		}
		if node.param.IsNamed() {
			if err := accumulate(jac, node.param.Name, m); err != nil {
				return nil, nil, err
			}
		}
		scaled, err := m.ScaleBatch(factors)
		if err != nil {
			return nil, nil, err
		}
		return scaled, jac, nil

	case *Sequence:
		return productJacobian(node.children, values, fullSupport)

	case *Merge:
		return productJacobian(node.children, values, fullSupport)

	case *Add:
		if len(node.children) == 0 {
			return nil, nil, fmt.Errorf("%w: add of zero operators", ErrValidation)
		}
		var sum *tensor.Matrix
		for _, child := range node.children {
			m, childJac, err := jacobian(child, values, fullSupport)
			if err != nil {
				return nil, nil, err
			}
			if sum == nil {
				sum = m
			} else if sum, err = sum.Add(m); err != nil {
				return nil, nil, err
			}
			for name, d := range childJac {
				if err := accumulate(jac, name, d); err != nil {
					return nil, nil, err
				}
			}
		}
		return sum, jac, nil

	case *Evolution:
		u, local, err := node.jacobian(values)
		if err != nil {
			return nil, nil, err
		}
		if u, err = expand(node, u, fullSupport); err != nil {
			return nil, nil, err
		}
		for name, d := range local {
			if d, err = expand(node, d, fullSupport); err != nil {
				return nil, nil, err
			}
			jac[name] = d
		}
		return u, jac, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown operator %T", ErrValidation, op)
	}
}

// productJacobian applies the product rule to M = M_last ... M_first.
func productJacobian(children []Operator, values Values, fullSupport []int) (*tensor.Matrix, map[string]*tensor.Matrix, error) {
	acc := tensor.Identity(1 << len(fullSupport))
	jac := make(map[string]*tensor.Matrix)
	for _, child := range children {
		m, childJac, err := jacobian(child, values, fullSupport)
		if err != nil {
			return nil, nil, err
		}
		for name, d := range jac {
			if jac[name], err = tensor.MatMul(m, d); err != nil {
				return nil, nil, err
			}
		}
		for name, d := range childJac {
			term, err := tensor.MatMul(d, acc)
			if err != nil {
				return nil, nil, err
			}
			if err := accumulate(jac, name, term); err != nil {
				return nil, nil, err
			}
		}
		if acc, err = tensor.MatMul(m, acc); err != nil {
			return nil, nil, err
		}
	}
	return acc, jac, nil
}

// jacobian returns exp(-i G t) over the generator support and its derivatives
// with respect to the time and the generator parameters.
func (e *Evolution) jacobian(values Values) (*tensor.Matrix, map[string]*tensor.Matrix, error) {
	u, err := e.matrix(values)
	if err != nil {
		return nil, nil, err
	}
	g, err := e.generator.Matrix(values)
	if err != nil {
		return nil, nil, err
	}
	t, err := e.time.Resolve(values)
	if err != nil {
		return nil, nil, err
	}
	jac := make(map[string]*tensor.Matrix)

	genJac, err := e.generator.jacobian(values)
	if err != nil {
		return nil, nil, err
	}
	if len(genJac) > 0 {
		// d exp(A)/dθ is the Fréchet derivative of exp at A = -i t G in the
		// direction -i t dG/dθ.
		minusIT := make([]complex128, len(t))
		for i, v := range t {
			minusIT[i] = complex(0, -v)
		}
		a, err := g.ScaleBatch(minusIT)
		if err != nil {
			return nil, nil, err
		}
		for name, dg := range genJac {
			dir, err := dg.ScaleBatch(minusIT)
			if err != nil {
				return nil, nil, err
			}
			_, d, err := tensor.ExpmFrechet(a, dir)
			if err != nil {
				return nil, nil, fmt.Errorf("evolution derivative for %q: %w", name, err)
			}
			jac[name] = d.Round(e.precision)
		}
	}

	if e.time.IsNamed() {
		// G commutes with exp(-i G t), so dU/dt = -i G U.
		d, err := tensor.MatMul(g, u)
		if err != nil {
			return nil, nil, err
		}
		if err := accumulate(jac, e.time.Name, d.Scale(-1i)); err != nil {
			return nil, nil, err
		}
	}
	return u, jac, nil
}

// accumulate adds d to jac[name] with batch broadcasting.
func accumulate(jac map[string]*tensor.Matrix, name string, d *tensor.Matrix) error {
	prev, ok := jac[name]
	if !ok {
		jac[name] = d
		return nil
	}
	sum, err := prev.Add(d)
	if err != nil {
		return fmt.Errorf("derivative of %q: %w", name, err)
	}
	jac[name] = sum
	return nil
}

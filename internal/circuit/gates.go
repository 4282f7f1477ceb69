package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

// fixed creates a parameterless gate from its target matrix rows.
func fixed(name string, targets []int, rows [][]complex128, unitary bool) *Primitive {
	var data []complex128
	for _, row := range rows {
		data = append(data, row...)
	}
	return &Primitive{
		name:    name,
		targets: targets,
		block:   func([]float64) []complex128 { return data },
		unitary: unitary,
		err:     checkSupport(name, targets),
	}
}

// checkSupport rejects negative and repeated qubit indices.
func checkSupport(name string, support []int) error {
	for i, q := range support {
		if q < 0 {
			return fmt.Errorf("%w: %s: negative qubit %d in %v", ErrValidation, name, q, support)
		}
		if slices.Contains(support[:i], q) {
			return fmt.Errorf("%w: %s: qubit %d repeated in %v", ErrValidation, name, q, support)
		}
	}
	return nil
}

// controlled returns a copy of g with controls prepended to its own.
func controlled(name string, g *Primitive, controls ...int) *Primitive {
	out := *g
	out.name = name
	out.controls = slices.Concat(controls, g.controls)
	out.targets = slices.Clone(g.targets)
	if out.err == nil {
		out.err = checkSupport(name, out.QubitSupport())
	}
	return &out
}

// Controlled returns g controlled on every qubit of controls: the target
// matrix acts only when all controls are 1.
func Controlled(g *Primitive, controls ...int) (*Primitive, error) {
	if len(controls) == 0 {
		return nil, fmt.Errorf("%w: %s: no control qubits", ErrValidation, g.name)
	}
	c := controlled("C"+g.name, g, controls...)
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// I returns the identity gate.
func I(q int) *Primitive {
	return fixed("I", []int{q}, [][]complex128{{1, 0}, {0, 1}}, true)
}

// X returns the Pauli-X gate.
func X(q int) *Primitive {
	return fixed("X", []int{q}, [][]complex128{{0, 1}, {1, 0}}, true)
}

// Y returns the Pauli-Y gate.
func Y(q int) *Primitive {
	return fixed("Y", []int{q}, [][]complex128{{0, -1i}, {1i, 0}}, true)
}

// Z returns the Pauli-Z gate.
func Z(q int) *Primitive {
	return fixed("Z", []int{q}, [][]complex128{{1, 0}, {0, -1}}, true)
}

// H returns the Hadamard gate.
func H(q int) *Primitive {
	return fixed("H", []int{q}, [][]complex128{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}, true)
}

// S returns the phase gate diag(1, i).
func S(q int) *Primitive {
	return fixed("S", []int{q}, [][]complex128{{1, 0}, {0, 1i}}, true)
}

// SDagger returns diag(1, -i).
func SDagger(q int) *Primitive {
	return fixed("SDagger", []int{q}, [][]complex128{{1, 0}, {0, -1i}}, true)
}

// T returns the pi/8 gate diag(1, exp(i pi/4)).
func T(q int) *Primitive {
	return fixed("T", []int{q}, [][]complex128{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}, true)
}

// N returns the number operator |1><1| = (I - Z)/2. It is not unitary.
func N(q int) *Primitive {
	return fixed("N", []int{q}, [][]complex128{{0, 0}, {0, 1}}, false)
}

// SWAP exchanges two qubits.
func SWAP(a, b int) *Primitive {
	return fixed("SWAP", []int{a, b}, [][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}, true)
}

// CNOT flips target when control is 1.
func CNOT(control, target int) *Primitive {
	return controlled("CNOT", X(target), control)
}

// CX is an alias for CNOT.
func CX(control, target int) *Primitive {
	return controlled("CX", X(target), control)
}

// CY applies Y to target when control is 1.
func CY(control, target int) *Primitive {
	return controlled("CY", Y(target), control)
}

// CZ applies Z to target when control is 1.
func CZ(control, target int) *Primitive {
	return controlled("CZ", Z(target), control)
}

// Toffoli flips target when both controls are 1.
func Toffoli(control1, control2, target int) *Primitive {
	return controlled("Toffoli", X(target), control1, control2)
}

// CSWAP swaps the two targets when control is 1.
func CSWAP(control int, targets ...int) (*Primitive, error) {
	if len(targets) != 2 {
		return nil, fmt.Errorf("%w: CSWAP needs exactly 2 targets, got %v", ErrValidation, targets)
	}
	return Controlled(SWAP(targets[0], targets[1]), control)
}

// Projector returns |ket><bra| over support, where ket[i] and bra[i] are the
// values of qubit support[i]. It is not unitary.
func Projector(support []int, ket, bra string) (*Primitive, error) {
	if len(ket) != len(support) || len(bra) != len(support) {
		return nil, fmt.Errorf("%w: projector |%s><%s| on support %v", ErrValidation, ket, bra, support)
	}
	row, err := bitsIndex(ket)
	if err != nil {
		return nil, err
	}
	col, err := bitsIndex(bra)
	if err != nil {
		return nil, err
	}
	if err := checkSupport("Projector", support); err != nil {
		return nil, err
	}
	dim := 1 << len(support)
	data := make([]complex128, dim*dim)
	data[row*dim+col] = 1
	return &Primitive{
		name:    fmt.Sprintf("Projector(|%s><%s|)", ket, bra),
		targets: slices.Clone(support),
		block:   func([]float64) []complex128 { return data },
	}, nil
}

func bitsIndex(bits string) (int, error) {
	idx := 0
	for _, ch := range bits {
		idx <<= 1
		switch ch {
		case '0':
		case '1':
			idx |= 1
		default:
			return 0, fmt.Errorf("%w: invalid bitstring %q", ErrValidation, bits)
		}
	}
	return idx, nil
}

package circuit

import (
	"fmt"
	"slices"

	"github.com/born-ml/qsim/internal/tensor"
)

// GeneratorType tags the representation of a Generator.
type GeneratorType int

// Generator representations.
const (
	// GeneratorTensor is a dense matrix with an explicit qubit support.
	GeneratorTensor GeneratorType = iota
	// GeneratorOperation is an operator tree without named parameters.
	GeneratorOperation
	// GeneratorParametricOperation is an operator tree whose named parameters
	// are resolved at evaluation time.
	GeneratorParametricOperation
)

// String returns the generator type name.
func (t GeneratorType) String() string {
	switch t {
	case GeneratorTensor:
		return "tensor"
	case GeneratorOperation:
		return "operation"
	case GeneratorParametricOperation:
		return "parametric_operation"
	default:
		return "unknown"
	}
}

// Generator describes the Hamiltonian G of a time evolution exp(-i G t).
type Generator struct {
	kind    GeneratorType
	matrix  *tensor.Matrix
	op      Operator
	support []int
}

// NewTensorGenerator creates a generator from a dense (optionally batched)
// matrix. A matrix carries no support, so it must be given explicitly and
// match the matrix dimension.
func NewTensorGenerator(m *tensor.Matrix, support []int) (*Generator, error) {
	if len(support) == 0 {
		return nil, fmt.Errorf("%w: tensor generator without qubit support", ErrValidation)
	}
	if err := checkSupport("generator", support); err != nil {
		return nil, err
	}
	if m.Dim() != 1<<len(support) {
		return nil, fmt.Errorf("%w: %dx%d generator on support %v", ErrValidation, m.Dim(), m.Dim(), support)
	}
	return &Generator{kind: GeneratorTensor, matrix: m, support: slices.Clone(support)}, nil
}

// NewOperatorGenerator creates a generator from an operator tree, typically an
// Add of Pauli strings. The tree is parametric when it declares named
// parameters.
func NewOperatorGenerator(op Operator) *Generator {
	kind := GeneratorOperation
	if len(op.ParamNames()) > 0 {
		kind = GeneratorParametricOperation
	}
	return &Generator{kind: kind, op: op, support: op.QubitSupport()}
}

// Type returns the generator representation.
func (g *Generator) Type() GeneratorType { return g.kind }

// QubitSupport returns the qubits the generator acts on.
func (g *Generator) QubitSupport() []int { return slices.Clone(g.support) }

// Operation returns the operator tree of an operation generator, or nil.
func (g *Generator) Operation() Operator { return g.op }

// ParamNames returns the named parameters of a parametric generator.
func (g *Generator) ParamNames() []string {
	if g.op == nil {
		return nil
	}
	return g.op.ParamNames()
}

// Matrix resolves the generator to a dense matrix over QubitSupport.
func (g *Generator) Matrix(values Values) (*tensor.Matrix, error) {
	if g.kind == GeneratorTensor {
		return g.matrix, nil
	}
	return Tensor(g.op, values, g.support)
}

// jacobian returns dG/dθ for every named parameter of the generator.
func (g *Generator) jacobian(values Values) (map[string]*tensor.Matrix, error) {
	if g.kind == GeneratorTensor {
		return nil, nil
	}
	_, jac, err := jacobian(g.op, values, g.support)
	return jac, err
}

// Evolution applies exp(-i G t) for a generator G and a time parameter t.
type Evolution struct {
	generator *Generator
	time      Param
	precision tensor.Precision
}

// NewEvolution creates a time evolution operator.
func NewEvolution(generator *Generator, time Param) *Evolution {
	return &Evolution{generator: generator, time: time}
}

// Generator returns the evolution generator.
func (e *Evolution) Generator() *Generator { return e.generator }

// Time returns the time parameter.
func (e *Evolution) Time() Param { return e.time }

// QubitSupport returns the generator support.
func (e *Evolution) QubitSupport() []int { return e.generator.QubitSupport() }

// Name returns "Evolution".
func (e *Evolution) Name() string { return "Evolution" }

// ParamNames returns the generator parameters followed by the time parameter.
func (e *Evolution) ParamNames() []string {
	return appendNames(slices.Clone(e.generator.ParamNames()), e.time)
}

// Unitary returns exp(-i G t) over the generator support.
func (e *Evolution) Unitary(values Values) (*tensor.Matrix, error) { return e.matrix(values) }

// Dagger returns the conjugate transpose of Unitary.
func (e *Evolution) Dagger(values Values) (*tensor.Matrix, error) { return dagger(e, values) }

// Forward applies the evolution to state.
func (e *Evolution) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(e, state, values)
}

func (e *Evolution) isOperator() {}

// IsHermitian reports whether the resolved generator is Hermitian, i.e. the
// evolution is unitary.
func (e *Evolution) IsHermitian(values Values) (bool, error) {
	g, err := e.generator.Matrix(values)
	if err != nil {
		return false, err
	}
	return g.IsHermitian(hermitianTolerance * max(1, g.MaxAbs())), nil
}

const hermitianTolerance = 1e-10

// matrix returns exp(-i G t) per broadcast batch element of G and t.
func (e *Evolution) matrix(values Values) (*tensor.Matrix, error) {
	g, err := e.generator.Matrix(values)
	if err != nil {
		return nil, fmt.Errorf("evolution generator: %w", err)
	}
	t, err := e.time.Resolve(values)
	if err != nil {
		return nil, fmt.Errorf("evolution time: %w", err)
	}
	u, err := tensor.EvolutionOperator(g, t)
	if err != nil {
		return nil, err
	}
	return u.Round(e.precision), nil
}

// Evolve applies exp(-i G t) to state with the default evaluator.
//
// The batch of the result follows the broadcast of the generator batch, the
// time batch and the state batch.
func Evolve(generator *Generator, t Param, state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(NewEvolution(generator, t), state, values)
}

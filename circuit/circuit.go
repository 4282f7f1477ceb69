// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package circuit

import (
	"math/rand"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/tensor"
)

// Operator is a node of an operator tree.
type Operator = circuit.Operator

// Node variants.
type (
	Primitive = circuit.Primitive
	Scale     = circuit.Scale
	Sequence  = circuit.Sequence
	Add       = circuit.Add
	Merge     = circuit.Merge
	Evolution = circuit.Evolution
)

// Values binds parameter names to per-batch values.
type Values = circuit.Values

// Param is a named or literal operator parameter.
type Param = circuit.Param

// Generator is the Hamiltonian of an Evolution.
type Generator = circuit.Generator

// GeneratorType distinguishes tensor, operator and parametric generators.
type GeneratorType = circuit.GeneratorType

// Generator types.
const (
	GeneratorTensor              = circuit.GeneratorTensor
	GeneratorOperation           = circuit.GeneratorOperation
	GeneratorParametricOperation = circuit.GeneratorParametricOperation
)

// Evaluation.
type (
	Config     = circuit.Config
	Evaluator  = circuit.Evaluator
	NodeID     = circuit.NodeID
	Instrument = circuit.Instrument

	NopInstrument = circuit.NopInstrument
	LogInstrument = circuit.LogInstrument
)

// Errors.
var (
	ErrValidation          = circuit.ErrValidation
	ErrDiffModeUnsupported = circuit.ErrDiffModeUnsupported
	ErrUnboundParameter    = circuit.ErrUnboundParameter
	ErrUnsupportedDevice   = circuit.ErrUnsupportedDevice
)

// Named returns a parameter resolved from Values by name.
func Named(name string) Param { return circuit.Named(name) }

// Literal returns a parameter with fixed per-batch values.
func Literal(values ...float64) Param { return circuit.Literal(values...) }

// NewPrimitive creates a fixed gate from its matrix on targets.
func NewPrimitive(name string, targets []int, m *tensor.Matrix, unitary bool) (*Primitive, error) {
	return circuit.NewPrimitive(name, targets, m, unitary)
}

// NewScale multiplies child by param.
func NewScale(child Operator, param Param) *Scale { return circuit.NewScale(child, param) }

// NewSequence applies children in order.
func NewSequence(children ...Operator) *Sequence { return circuit.NewSequence(children...) }

// NewAdd sums children applied to the same input.
func NewAdd(children ...Operator) *Add { return circuit.NewAdd(children...) }

// NewMerge fuses children acting on the same support into one matrix.
func NewMerge(children ...Operator) (*Merge, error) { return circuit.NewMerge(children...) }

// NewTensorGenerator creates a generator from an explicit matrix.
func NewTensorGenerator(m *tensor.Matrix, support []int) (*Generator, error) {
	return circuit.NewTensorGenerator(m, support)
}

// NewOperatorGenerator creates a generator from an operator tree.
func NewOperatorGenerator(op Operator) *Generator { return circuit.NewOperatorGenerator(op) }

// NewEvolution returns exp(-i G t).
func NewEvolution(generator *Generator, t Param) *Evolution {
	return circuit.NewEvolution(generator, t)
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() Config { return circuit.DefaultConfig() }

// NewEvaluator creates an evaluator.
func NewEvaluator(cfg Config) *Evaluator { return circuit.NewEvaluator(cfg) }

// NewLogInstrument returns an instrument logging node entry and exit.
var NewLogInstrument = circuit.NewLogInstrument

// Forward applies op to state.
//
// Example:
//
//	psi, err := circuit.Forward(circ, tensor.ZeroState(4, 1), values)
func Forward(op Operator, state *tensor.State, values Values) (*tensor.State, error) {
	return circuit.Forward(op, state, values)
}

// Validate reports the first malformed node of op, such as a gate with a
// repeated qubit.
func Validate(op Operator) error { return circuit.Validate(op) }

// Tensor returns the matrix of op over fullSupport (op's own support when nil).
func Tensor(op Operator, values Values, fullSupport []int) (*tensor.Matrix, error) {
	return circuit.Tensor(op, values, fullSupport)
}

// Jacobian returns dTensor/dθ for every named parameter of op.
func Jacobian(op Operator, values Values, support []int) (map[string]*tensor.Matrix, error) {
	return circuit.Jacobian(op, values, support)
}

// Evolve applies exp(-i G t) to state.
func Evolve(generator *Generator, t Param, state *tensor.State, values Values) (*tensor.State, error) {
	return circuit.Evolve(generator, t, state, values)
}

// Retarget copies op with the given precision on device.
func Retarget(op Operator, precision tensor.Precision, device tensor.Device) (Operator, error) {
	return circuit.Retarget(op, precision, device)
}

// PauliString returns the Pauli product named by s, e.g. "XIZY".
func PauliString(s string) (Operator, error) { return circuit.PauliString(s) }

// RandomPauliHamiltonian returns a random Hermitian sum of Pauli strings.
func RandomPauliHamiltonian(nQubits, nTerms int, rng *rand.Rand) (*Add, error) {
	return circuit.RandomPauliHamiltonian(nQubits, nTerms, rng)
}

// RandomHermitian returns a batch of random Hermitian matrices.
func RandomHermitian(nQubits, batch int, rng *rand.Rand) *tensor.Matrix {
	return circuit.RandomHermitian(nQubits, batch, rng)
}

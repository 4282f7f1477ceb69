// Package circuit implements operator trees over batched state vectors.
//
// A circuit is a tree of Operator nodes:
//   - Primitive: a fixed or parametric gate matrix over a qubit support
//   - Scale: a child operator multiplied by a scalar parameter
//   - Sequence: children applied left to right
//   - Add: children applied to the same input and summed
//   - Merge: children over one support, fused into a single matrix
//   - Evolution: exp(-i G t) for a Generator G and time t
//
// The set of variants is closed. Evaluation (Forward, Tensor, Jacobian,
// Retarget) dispatches on the concrete type with a type switch; nodes carry
// no parameter values, which are supplied as Values at every call.
//
// Example:
//
//	c := circuit.NewSequence(
//	    circuit.RX(0, circuit.Named("t0")),
//	    circuit.CNOT(0, 1),
//	)
//	out, err := circuit.Forward(c, tensor.ZeroState(2, 1), circuit.Values{"t0": {0.3}})
package circuit

import (
	"fmt"
	"slices"

	"github.com/born-ml/qsim/internal/tensor"
)

// Operator is a node of an operator tree.
//
// Implementations: *Primitive, *Scale, *Sequence, *Add, *Merge, *Evolution.
type Operator interface {
	// QubitSupport returns the ordered qubit indices the operator acts on.
	// Matrix index bit 0 corresponds to the last element.
	QubitSupport() []int

	// Name returns a short node name (gate name or node kind).
	Name() string

	// ParamNames returns the named parameters of the subtree in order of
	// first appearance.
	ParamNames() []string

	// Unitary returns the dense matrix of the operator over its own support.
	// Despite the name, the matrix is not unitary for N, Projector, Scale or
	// Add nodes.
	Unitary(values Values) (*tensor.Matrix, error)

	// Dagger returns the conjugate transpose of Unitary.
	Dagger(values Values) (*tensor.Matrix, error)

	// Forward applies the operator to state with the default evaluator.
	Forward(state *tensor.State, values Values) (*tensor.State, error)

	isOperator()
}

// kernel builds a row-major matrix block from one batch element of the
// resolved parameter values.
type kernel func(p []float64) []complex128

// Primitive is a gate: a fixed or parametric matrix over its support.
//
// For controlled gates the support lists the controls first, then the targets.
// The gate matrix is the identity except for the block where every control is
// 1, which holds the target matrix.
type Primitive struct {
	name      string
	controls  []int
	targets   []int
	params    []Param
	block     kernel   // Target matrix.
	derivs    []kernel // Derivative of the target matrix per parameter.
	unitary   bool
	precision tensor.Precision
	err       error // Malformed support; returned by every evaluation.
}

// NewPrimitive creates a fixed gate from its target matrix (batch 1).
func NewPrimitive(name string, targets []int, m *tensor.Matrix, unitary bool) (*Primitive, error) {
	if m.Dim() != 1<<len(targets) {
		return nil, fmt.Errorf("%w: %s: %dx%d matrix on %d targets", ErrValidation, name, m.Dim(), m.Dim(), len(targets))
	}
	if m.Batch() != 1 {
		return nil, fmt.Errorf("%w: %s: fixed gate matrix with batch %d", ErrValidation, name, m.Batch())
	}
	if err := checkSupport(name, targets); err != nil {
		return nil, err
	}
	data := slices.Clone(m.Data())
	return &Primitive{
		name:    name,
		targets: slices.Clone(targets),
		block:   func([]float64) []complex128 { return data },
		unitary: unitary,
	}, nil
}

// QubitSupport returns controls followed by targets.
func (p *Primitive) QubitSupport() []int {
	return slices.Concat(p.controls, p.targets)
}

// Name returns the gate name.
func (p *Primitive) Name() string { return p.name }

// ParamNames returns the named parameters of the gate.
func (p *Primitive) ParamNames() []string { return appendNames(nil, p.params...) }

// Params returns the gate parameters.
func (p *Primitive) Params() []Param { return slices.Clone(p.params) }

// Controls returns the control qubits.
func (p *Primitive) Controls() []int { return slices.Clone(p.controls) }

// Targets returns the target qubits.
func (p *Primitive) Targets() []int { return slices.Clone(p.targets) }

// IsUnitary reports whether the gate matrix is unitary for every parameter
// value.
func (p *Primitive) IsUnitary() bool { return p.unitary }

// Precision returns the storage precision of the gate matrix.
func (p *Primitive) Precision() tensor.Precision { return p.precision }

// Unitary returns the gate matrix over QubitSupport.
func (p *Primitive) Unitary(values Values) (*tensor.Matrix, error) { return p.matrix(values) }

// Dagger returns the conjugate transpose of the gate matrix.
func (p *Primitive) Dagger(values Values) (*tensor.Matrix, error) { return dagger(p, values) }

// Forward applies the gate to state.
func (p *Primitive) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(p, state, values)
}

func (p *Primitive) isOperator() {}

// resolve returns the values of every parameter and their broadcast batch.
func (p *Primitive) resolve(values Values) ([][]float64, int, error) {
	if p.err != nil {
		return nil, 0, p.err
	}
	resolved := make([][]float64, len(p.params))
	batch := 1
	for i, param := range p.params {
		vals, err := param.Resolve(values)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", p.name, err)
		}
		if batch, err = tensor.BroadcastBatch(batch, len(vals)); err != nil {
			return nil, 0, fmt.Errorf("%s: parameter %s: %w", p.name, param, err)
		}
		resolved[i] = vals
	}
	return resolved, batch, nil
}

// build evaluates k for every batch element and embeds the result in the
// controlled matrix. When identity is set the control-0 blocks hold the
// identity, otherwise zeros.
func (p *Primitive) build(k kernel, resolved [][]float64, batch int, identity bool) *tensor.Matrix {
	tdim := 1 << len(p.targets)
	dim := tdim << len(p.controls)
	offset := dim - tdim
	size := dim * dim
	data := make([]complex128, size*batch)
	args := make([]float64, len(resolved))
	for b := 0; b < batch; b++ {
		for i, vals := range resolved {
			args[i] = vals[tensor.BatchIndex(len(vals), b)]
		}
		out := data[b*size : (b+1)*size]
		if identity {
			for i := 0; i < offset; i++ {
				out[i*dim+i] = 1
			}
		}
		blk := k(args)
		for r := 0; r < tdim; r++ {
			copy(out[(offset+r)*dim+offset:(offset+r)*dim+dim], blk[r*tdim:(r+1)*tdim])
		}
	}
	m, _ := tensor.NewMatrix(dim, batch, data)
	return m.Round(p.precision)
}

// matrix returns the gate matrix for the bound values.
func (p *Primitive) matrix(values Values) (*tensor.Matrix, error) {
	resolved, batch, err := p.resolve(values)
	if err != nil {
		return nil, err
	}
	return p.build(p.block, resolved, batch, true), nil
}

// derivative returns d(matrix)/d(params[i]).
func (p *Primitive) derivative(i int, values Values) (*tensor.Matrix, error) {
	resolved, batch, err := p.resolve(values)
	if err != nil {
		return nil, err
	}
	return p.build(p.derivs[i], resolved, batch, false), nil
}

// Scale multiplies the output of its child by a scalar parameter.
type Scale struct {
	child Operator
	param Param
}

// NewScale creates a scaled operator.
func NewScale(child Operator, param Param) *Scale {
	return &Scale{child: child, param: param}
}

// Child returns the wrapped operator.
func (s *Scale) Child() Operator { return s.child }

// Param returns the scale parameter.
func (s *Scale) Param() Param { return s.param }

// QubitSupport returns the child support.
func (s *Scale) QubitSupport() []int { return s.child.QubitSupport() }

// Name returns "Scale".
func (s *Scale) Name() string { return "Scale" }

// ParamNames returns the scale parameter followed by the child parameters.
func (s *Scale) ParamNames() []string {
	return mergeNames(appendNames(nil, s.param), s.child.ParamNames())
}

// Unitary returns the scaled child matrix.
func (s *Scale) Unitary(values Values) (*tensor.Matrix, error) { return Tensor(s, values, nil) }

// Dagger returns the conjugate transpose of Unitary.
func (s *Scale) Dagger(values Values) (*tensor.Matrix, error) { return dagger(s, values) }

// Forward applies the scaled operator to state.
func (s *Scale) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(s, state, values)
}

func (s *Scale) isOperator() {}

// Sequence applies its children left to right.
type Sequence struct {
	children []Operator
	support  []int
}

// NewSequence creates a sequence. The support is the sorted union of the
// children supports.
func NewSequence(children ...Operator) *Sequence {
	return &Sequence{children: children, support: unionSupport(children)}
}

// Children returns the operators of the sequence.
func (s *Sequence) Children() []Operator { return slices.Clone(s.children) }

// QubitSupport returns the sorted union of the children supports.
func (s *Sequence) QubitSupport() []int { return slices.Clone(s.support) }

// Name returns "Sequence".
func (s *Sequence) Name() string { return "Sequence" }

// ParamNames returns the children parameters in order of first appearance.
func (s *Sequence) ParamNames() []string { return childNames(s.children) }

// Unitary returns the ordered product of the children matrices.
func (s *Sequence) Unitary(values Values) (*tensor.Matrix, error) { return Tensor(s, values, nil) }

// Dagger returns the conjugate transpose of Unitary.
func (s *Sequence) Dagger(values Values) (*tensor.Matrix, error) { return dagger(s, values) }

// Forward applies the children to state in order.
func (s *Sequence) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(s, state, values)
}

func (s *Sequence) isOperator() {}

// Add applies every child to the same input and sums the results.
type Add struct {
	children []Operator
	support  []int
}

// NewAdd creates a sum of operators. The support is the sorted union of the
// children supports. An Add without children fails at evaluation.
func NewAdd(children ...Operator) *Add {
	return &Add{children: children, support: unionSupport(children)}
}

// Children returns the summed operators.
func (a *Add) Children() []Operator { return slices.Clone(a.children) }

// QubitSupport returns the sorted union of the children supports.
func (a *Add) QubitSupport() []int { return slices.Clone(a.support) }

// Name returns "Add".
func (a *Add) Name() string { return "Add" }

// ParamNames returns the children parameters in order of first appearance.
func (a *Add) ParamNames() []string { return childNames(a.children) }

// Unitary returns the sum of the children matrices.
func (a *Add) Unitary(values Values) (*tensor.Matrix, error) { return Tensor(a, values, nil) }

// Dagger returns the conjugate transpose of Unitary.
func (a *Add) Dagger(values Values) (*tensor.Matrix, error) { return dagger(a, values) }

// Forward applies the sum to state.
func (a *Add) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(a, state, values)
}

func (a *Add) isOperator() {}

// Merge fuses children acting on one qubit support into a single matrix that
// is contracted once. It is equivalent to a Sequence of the same children.
type Merge struct {
	children []Operator
	support  []int
}

// NewMerge creates a merged operator. Every child must act on the same set of
// qubits (in any order); the support of the first child fixes the matrix
// ordering.
func NewMerge(children ...Operator) (*Merge, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: merge of zero operators", ErrValidation)
	}
	for _, child := range children {
		if err := Validate(child); err != nil {
			return nil, err
		}
	}
	support := children[0].QubitSupport()
	want := sortedCopy(support)
	for i, child := range children[1:] {
		if got := sortedCopy(child.QubitSupport()); !slices.Equal(got, want) {
			return nil, fmt.Errorf("%w: merge child %d (%s) acts on %v, want %v",
				ErrValidation, i+1, child.Name(), child.QubitSupport(), support)
		}
	}
	return &Merge{children: children, support: support}, nil
}

// Children returns the merged operators.
func (m *Merge) Children() []Operator { return slices.Clone(m.children) }

// QubitSupport returns the shared support in the order of the first child.
func (m *Merge) QubitSupport() []int { return slices.Clone(m.support) }

// Name returns "Merge".
func (m *Merge) Name() string { return "Merge" }

// ParamNames returns the children parameters in order of first appearance.
func (m *Merge) ParamNames() []string { return childNames(m.children) }

// Unitary returns the ordered product of the children matrices.
func (m *Merge) Unitary(values Values) (*tensor.Matrix, error) { return Tensor(m, values, nil) }

// Dagger returns the conjugate transpose of Unitary.
func (m *Merge) Dagger(values Values) (*tensor.Matrix, error) { return dagger(m, values) }

// Forward applies the fused matrix to state.
func (m *Merge) Forward(state *tensor.State, values Values) (*tensor.State, error) {
	return Forward(m, state, values)
}

func (m *Merge) isOperator() {}

// Validate reports the first malformed node of the tree rooted at op. Gate
// helpers that cannot return an error (CNOT, SWAP, RX, ...) record a repeated
// or negative qubit and fail on first evaluation; Validate surfaces it right
// after construction.
func Validate(op Operator) error {
	switch node := op.(type) {
	case *Primitive:
		return node.err
	case *Scale:
		return Validate(node.child)
	case *Sequence:
		return validateAll(node.children)
	case *Add:
		return validateAll(node.children)
	case *Merge:
		return validateAll(node.children)
	case *Evolution:
		if gen := node.generator.op; gen != nil {
			return Validate(gen)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown operator %T", ErrValidation, op)
	}
}

func validateAll(children []Operator) error {
	for _, child := range children {
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}

func dagger(op Operator, values Values) (*tensor.Matrix, error) {
	m, err := op.Unitary(values)
	if err != nil {
		return nil, err
	}
	return m.Dagger(), nil
}

func unionSupport(children []Operator) []int {
	var support []int
	for _, child := range children {
		for _, q := range child.QubitSupport() {
			if !slices.Contains(support, q) {
				support = append(support, q)
			}
		}
	}
	slices.Sort(support)
	return support
}

func childNames(children []Operator) []string {
	var names []string
	for _, child := range children {
		names = mergeNames(names, child.ParamNames())
	}
	return names
}

func sortedCopy(s []int) []int {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

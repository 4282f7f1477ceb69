// Package expectation evaluates expectation values of observables on circuit
// outputs and their gradients with respect to circuit parameters.
//
// Two differentiation modes are available and are always chosen by the
// caller:
//   - Standard: reverse-mode differentiation over a recorded tape. Supports
//     every operator tree, including Scale and Add nodes and parametric
//     observables.
//   - Adjoint: two-state reverse sweep with memory independent of depth.
//     Requires unitary circuits and a parameter-free observable.
//
// Example:
//
//	res, err := expectation.Expectation(circ, tensor.ZeroState(4, 1), values, circuit.Z(0), expectation.Adjoint)
//	energy, grad := res.Values[0], res.Gradients["theta"]
package expectation

import (
	"errors"
	"fmt"

	"github.com/born-ml/qsim/internal/adjoint"
	"github.com/born-ml/qsim/internal/autodiff"
	"github.com/born-ml/qsim/internal/backend/cpu"
	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

// ErrDiffModeUnsupported is returned when the selected mode cannot
// differentiate the given circuit or observable.
var ErrDiffModeUnsupported = circuit.ErrDiffModeUnsupported

// ErrUnknownDiffMode is returned for a mode name or value that is neither
// Standard nor Adjoint.
var ErrUnknownDiffMode = errors.New("unknown diff mode")

// DiffMode selects the differentiation algorithm.
type DiffMode int

const (
	// Standard uses tape-based reverse-mode differentiation.
	Standard DiffMode = iota
	// Adjoint uses adjoint differentiation.
	Adjoint
)

// String returns the mode name.
func (m DiffMode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Adjoint:
		return "adjoint"
	default:
		return fmt.Sprintf("DiffMode(%d)", int(m))
	}
}

// ParseDiffMode parses "standard" or "adjoint".
func ParseDiffMode(s string) (DiffMode, error) {
	switch s {
	case "standard", "ad":
		return Standard, nil
	case "adjoint":
		return Adjoint, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownDiffMode, s)
	}
}

// Result holds expectation values and gradients.
type Result struct {
	// Values holds E_b = Re<psi_b|O|psi_b> for every batch element.
	Values []float64
	// Gradients maps every bound parameter of the circuit (and, in Standard
	// mode, the observable) to d(sum_b E_b)/dθ, one entry per bound value.
	Gradients map[string][]float64
}

// Total returns sum_b E_b, the quantity the gradients differentiate.
func (r *Result) Total() float64 {
	var sum float64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// Config configures an Evaluator.
type Config struct {
	// Backend contracts operator matrices onto states.
	Backend tensor.Backend
	// Instrument observes gradient-free evaluations.
	Instrument circuit.Instrument
}

// DefaultConfig returns a Config with the CPU backend and no instrumentation.
func DefaultConfig() Config {
	return Config{
		Backend:    cpu.New(),
		Instrument: circuit.NopInstrument{},
	}
}

// Evaluator computes expectation values with a fixed configuration.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator, filling unset fields from DefaultConfig.
func NewEvaluator(cfg Config) *Evaluator {
	def := DefaultConfig()
	if cfg.Backend == nil {
		cfg.Backend = def.Backend
	}
	if cfg.Instrument == nil {
		cfg.Instrument = def.Instrument
	}
	return &Evaluator{cfg: cfg}
}

// Config returns the evaluator configuration.
func (e *Evaluator) Config() Config { return e.cfg }

// Expectation computes the expectation values of observable on circ(state)
// and their gradients using mode.
func (e *Evaluator) Expectation(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
	mode DiffMode,
) (*Result, error) {
	var (
		energies []float64
		grads    map[string][]float64
		err      error
	)
	switch mode {
	case Standard:
		energies, grads, err = autodiff.New(e.cfg.Backend).Expectation(circ, observable, state, values)
	case Adjoint:
		energies, grads, err = adjoint.Gradient(circ, state, values, observable, adjoint.Config{Backend: e.cfg.Backend})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDiffMode, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("expectation (%s): %w", mode, err)
	}
	return &Result{Values: energies, Gradients: grads}, nil
}

// Evaluate computes the expectation values of observable on circ(state)
// without gradients.
func (e *Evaluator) Evaluate(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
) ([]float64, error) {
	ev := circuit.NewEvaluator(circuit.Config{Backend: e.cfg.Backend, Instrument: e.cfg.Instrument})
	psi, err := ev.Forward(circ, state, values)
	if err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}
	phi, err := ev.Forward(observable, psi, values)
	if err != nil {
		return nil, fmt.Errorf("observable: %w", err)
	}
	inner, err := tensor.Inner(psi, phi)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(inner))
	for i, v := range inner {
		out[i] = real(v)
	}
	return out, nil
}

// Expectation computes expectation values and gradients with the default
// configuration.
func Expectation(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
	mode DiffMode,
) (*Result, error) {
	return NewEvaluator(DefaultConfig()).Expectation(circ, state, values, observable, mode)
}

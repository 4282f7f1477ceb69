package circuit

import (
	"fmt"

	"github.com/born-ml/qsim/internal/backend/cpu"
	"github.com/born-ml/qsim/internal/tensor"
)

// Config configures operator evaluation.
type Config struct {
	Backend    tensor.Backend // Contraction backend; every leaf is applied through it.
	Instrument Instrument     // Receives enter/exit events per node.
}

// DefaultConfig returns the CPU backend with default parallelism and no
// instrumentation.
func DefaultConfig() Config {
	return Config{
		Backend:    cpu.New(),
		Instrument: NopInstrument{},
	}
}

// Evaluator applies operator trees to states.
//
// Evaluators hold no mutable state and may be shared between goroutines when
// the configured instrument allows it.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an evaluator. Missing fields fall back to
// DefaultConfig.
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

// Backend returns the contraction backend.
func (e *Evaluator) Backend() tensor.Backend { return e.cfg.Backend }

// Forward applies op to state.
//
// Sequence children run left to right. Add children all see the same input
// and their outputs are summed with batch broadcasting. Scale multiplies the
// child output by its per-batch scalar.
func (e *Evaluator) Forward(op Operator, state *tensor.State, values Values) (*tensor.State, error) {
	return e.forward(op, rootID(op), state, values)
}

// Forward applies op to state with DefaultConfig.
func Forward(op Operator, state *tensor.State, values Values) (*tensor.State, error) {
	return NewEvaluator(DefaultConfig()).Forward(op, state, values)
}

func (e *Evaluator) forward(op Operator, id NodeID, state *tensor.State, values Values) (*tensor.State, error) {
	e.cfg.Instrument.OnEnter(id)
	defer e.cfg.Instrument.OnExit(id)

	switch node := op.(type) {
	case *Primitive:
		m, err := node.matrix(values)
		if err != nil {
			return nil, err
		}
		return e.apply(node, state, m)

	case *Scale:
		out, err := e.forward(node.child, childID(id, 0, node.child), state, values)
		if err != nil {
			return nil, err
		}
		factors, err := scaleFactors(node.param, values)
		if err != nil {
			return nil, err
		}
		return out.ScaleBatch(factors)

	case *Sequence:
		out := state
		for i, child := range node.children {
			var err error
			if out, err = e.forward(child, childID(id, i, child), out, values); err != nil {
				return nil, err
			}
		}
		return out, nil

	case *Add:
		if len(node.children) == 0 {
			return nil, fmt.Errorf("%w: add of zero operators", ErrValidation)
		}
		var sum *tensor.State
		for i, child := range node.children {
			out, err := e.forward(child, childID(id, i, child), state, values)
			if err != nil {
				return nil, err
			}
			if sum == nil {
				sum = out
				continue
			}
			if sum, err = sum.Add(out); err != nil {
				return nil, fmt.Errorf("add child %d (%s): %w", i, child.Name(), err)
			}
		}
		return sum, nil

	case *Merge:
		m, err := Tensor(node, values, nil)
		if err != nil {
			return nil, err
		}
		return e.apply(node, state, m)

	case *Evolution:
		u, err := node.matrix(values)
		if err != nil {
			return nil, err
		}
		return e.apply(node, state, u)

	default:
		return nil, fmt.Errorf("%w: unknown operator %T", ErrValidation, op)
	}
}

func (e *Evaluator) apply(op Operator, state *tensor.State, m *tensor.Matrix) (*tensor.State, error) {
	out, err := e.cfg.Backend.Apply(state, m, op.QubitSupport())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name(), err)
	}
	return out, nil
}

// scaleFactors resolves a scale parameter to complex per-batch factors.
func scaleFactors(p Param, values Values) ([]complex128, error) {
	vals, err := p.Resolve(values)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	factors := make([]complex128, len(vals))
	for i, v := range vals {
		factors[i] = complex(v, 0)
	}
	return factors, nil
}

package optim_test

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/expectation"
	"github.com/born-ml/qsim/internal/optim"
	"github.com/born-ml/qsim/internal/tensor"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	values := circuit.Values{"x": {2.0}}
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	if err := optimizer.Step(values, map[string][]float64{"x": {1.0}}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if !floatEqual(values["x"][0], 1.9, 1e-12) {
		t.Errorf("SGD update: got %f, want %f", values["x"][0], 1.9)
	}
	if len(optimizer.StateDict()) != 0 {
		t.Error("SGD without momentum should keep no state")
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	values := circuit.Values{"x": {1.0}}
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	grads := map[string][]float64{"x": {1.0}}

	// First step: velocity = 1.0, x = 1.0 - 0.1 = 0.9
	if err := optimizer.Step(values, grads); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	// Second step: velocity = 0.9 + 1.0 = 1.9, x = 0.9 - 0.19 = 0.71
	if err := optimizer.Step(values, grads); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if !floatEqual(values["x"][0], 0.71, 1e-12) {
		t.Errorf("SGD momentum update: got %f, want %f", values["x"][0], 0.71)
	}
	if v := optimizer.StateDict()["x"]; len(v) != 1 || !floatEqual(v[0], 1.9, 1e-12) {
		t.Errorf("velocity = %v, want [1.9]", v)
	}
}

// TestSGD_SkipsMissingGradients tests that unbound or unused parameters are
// left alone.
func TestSGD_SkipsMissingGradients(t *testing.T) {
	values := circuit.Values{"x": {1.0}, "y": {3.0, 4.0}}
	optimizer := optim.NewSGD(optim.SGDConfig{})

	if err := optimizer.Step(values, map[string][]float64{"x": {1.0}, "z": {5.0}}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if values["y"][0] != 3.0 || values["y"][1] != 4.0 {
		t.Errorf("y changed: %v", values["y"])
	}
	if optimizer.GetLR() != 0.01 {
		t.Errorf("default LR = %f, want 0.01", optimizer.GetLR())
	}
}

// TestAdam_FirstStep tests that the first bias-corrected Adam step moves every
// parameter by lr in the direction opposite to its gradient.
func TestAdam_FirstStep(t *testing.T) {
	values := circuit.Values{"x": {1.0, -2.0}}
	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.1})

	if err := optimizer.Step(values, map[string][]float64{"x": {0.5, -3.0}}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if !floatEqual(values["x"][0], 0.9, 1e-6) {
		t.Errorf("x[0] = %f, want 0.9", values["x"][0])
	}
	if !floatEqual(values["x"][1], -1.9, 1e-6) {
		t.Errorf("x[1] = %f, want -1.9", values["x"][1])
	}
	if optimizer.GetTimestep() != 1 {
		t.Errorf("timestep = %d, want 1", optimizer.GetTimestep())
	}
}

// TestAdam_ShapeMismatch tests that a malformed gradient leaves the optimizer
// untouched.
func TestAdam_ShapeMismatch(t *testing.T) {
	values := circuit.Values{"x": {1.0}}
	optimizer := optim.NewAdam(optim.AdamConfig{})

	err := optimizer.Step(values, map[string][]float64{"x": {1.0, 2.0}})
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if optimizer.GetTimestep() != 0 || values["x"][0] != 1.0 {
		t.Error("failed step should not update state")
	}
}

// TestMinimize_SingleQubit tests convergence of RY(θ)|0> towards the ground
// state of Z.
func TestMinimize_SingleQubit(t *testing.T) {
	circ := circuit.RY(0, circuit.Named("theta"))
	values := circuit.Values{"theta": {0.3}}
	evaluator := expectation.NewEvaluator(expectation.DefaultConfig())

	for _, mode := range []expectation.DiffMode{expectation.Standard, expectation.Adjoint} {
		t.Run(mode.String(), func(t *testing.T) {
			v := values.Clone()
			trace, err := optim.Minimize(evaluator, circ, tensor.ZeroState(1, 1), circuit.Z(0), v,
				optim.NewSGD(optim.SGDConfig{LR: 0.4}), 60, mode)
			if err != nil {
				t.Fatalf("Minimize failed: %v", err)
			}
			if len(trace) != 61 {
				t.Fatalf("trace length = %d, want 61", len(trace))
			}
			if !floatEqual(trace[0], math.Cos(0.3), 1e-12) {
				t.Errorf("initial energy = %f, want %f", trace[0], math.Cos(0.3))
			}
			if final := trace[len(trace)-1]; !floatEqual(final, -1, 1e-4) {
				t.Errorf("final energy = %f, want -1", final)
			}
		})
	}
}

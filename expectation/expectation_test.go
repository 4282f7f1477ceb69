// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package expectation_test

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/qsim/backend/cpu"
	"github.com/born-ml/qsim/circuit"
	"github.com/born-ml/qsim/expectation"
	"github.com/born-ml/qsim/tensor"
)

// TestPublicAPI differentiates cos(θ/2)|00> + sin(θ/2)|11> measured on
// Z(0) + Z(1) through the public packages: E = 2cos(θ), dE/dθ = -2sin(θ).
func TestPublicAPI(t *testing.T) {
	theta := 0.4
	circ := circuit.NewSequence(
		circuit.RY(0, circuit.Named("theta")),
		circuit.CNOT(0, 1),
	)
	obs := circuit.NewAdd(circuit.Z(0), circuit.Z(1))
	values := circuit.Values{"theta": {theta}}
	state := tensor.ZeroState(2, 1)

	standard, err := expectation.Expectation(circ, state, values, obs, expectation.Standard)
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	energies, grads, err := expectation.AdjointGradient(circ, state, values, obs, cpu.New())
	if err != nil {
		t.Fatalf("adjoint: %v", err)
	}

	wantE, wantG := 2*math.Cos(theta), -2*math.Sin(theta)
	if math.Abs(standard.Values[0]-wantE) > 1e-10 || math.Abs(energies[0]-wantE) > 1e-10 {
		t.Errorf("energy: standard %f, adjoint %f, want %f", standard.Values[0], energies[0], wantE)
	}
	if math.Abs(standard.Gradients["theta"][0]-wantG) > 1e-10 || math.Abs(grads["theta"][0]-wantG) > 1e-10 {
		t.Errorf("gradient: standard %f, adjoint %f, want %f",
			standard.Gradients["theta"][0], grads["theta"][0], wantG)
	}
}

// TestParseDiffModeAPI verifies mode parsing through the facade.
func TestParseDiffModeAPI(t *testing.T) {
	mode, err := expectation.ParseDiffMode("standard")
	if err != nil || mode != expectation.Standard {
		t.Errorf("ParseDiffMode(standard) = %v, %v", mode, err)
	}
	if _, err := expectation.ParseDiffMode("finite"); !errors.Is(err, expectation.ErrUnknownDiffMode) {
		t.Errorf("ParseDiffMode(finite): got %v, want ErrUnknownDiffMode", err)
	}
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package expectation computes expectation values and their gradients.
//
// # Differentiation Modes
//
//   - Standard: tape-based reverse mode, supports every operator tree
//   - Adjoint: memory-light reverse sweep for unitary circuits
//
// The mode is always explicit; a circuit that Adjoint cannot handle fails with
// ErrDiffModeUnsupported instead of falling back.
//
// # Basic Usage
//
//	res, err := expectation.Expectation(circ, tensor.ZeroState(4, 1), values, circuit.Z(0), expectation.Adjoint)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Values[0], res.Gradients["theta"])
package expectation

import (
	"github.com/born-ml/qsim/circuit"
	"github.com/born-ml/qsim/internal/adjoint"
	"github.com/born-ml/qsim/internal/expectation"
	"github.com/born-ml/qsim/tensor"
)

// DiffMode selects the differentiation algorithm.
type DiffMode = expectation.DiffMode

// Differentiation modes.
const (
	Standard = expectation.Standard
	Adjoint  = expectation.Adjoint
)

// Result holds expectation values and gradients.
type Result = expectation.Result

// Config configures an Evaluator.
type Config = expectation.Config

// Evaluator computes expectation values with a fixed configuration.
type Evaluator = expectation.Evaluator

// ErrDiffModeUnsupported is returned when a mode cannot differentiate a tree.
var ErrDiffModeUnsupported = expectation.ErrDiffModeUnsupported

// ErrUnknownDiffMode is returned for a mode that is neither Standard nor Adjoint.
var ErrUnknownDiffMode = expectation.ErrUnknownDiffMode

// DefaultConfig returns the default configuration.
func DefaultConfig() Config { return expectation.DefaultConfig() }

// NewEvaluator creates an Evaluator.
func NewEvaluator(cfg Config) *Evaluator { return expectation.NewEvaluator(cfg) }

// ParseDiffMode parses "standard" or "adjoint".
func ParseDiffMode(s string) (DiffMode, error) { return expectation.ParseDiffMode(s) }

// Expectation computes expectation values of observable on circ(state) and
// their gradients using mode.
func Expectation(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
	mode DiffMode,
) (*Result, error) {
	return expectation.Expectation(circ, state, values, observable, mode)
}

// AdjointGradient runs adjoint differentiation directly on backend.
func AdjointGradient(
	circ circuit.Operator,
	state *tensor.State,
	values circuit.Values,
	observable circuit.Operator,
	backend tensor.Backend,
) ([]float64, map[string][]float64, error) {
	return adjoint.Gradient(circ, state, values, observable, adjoint.Config{Backend: backend})
}

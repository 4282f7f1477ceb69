// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers for variational circuits.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: a variational loop over an expectation evaluator
//
// # Basic Usage
//
//	evaluator := expectation.NewEvaluator(expectation.DefaultConfig())
//	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//	trace, err := optim.Minimize(evaluator, circ, state, hamiltonian, values, optimizer, 200, expectation.Adjoint)
package optim

import (
	"github.com/born-ml/qsim/circuit"
	"github.com/born-ml/qsim/expectation"
	"github.com/born-ml/qsim/internal/optim"
	"github.com/born-ml/qsim/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.1,
//	    Momentum: 0.9,
//	})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Minimize runs steps optimization steps on the total energy of circ(state)
// and returns the energy trace.
func Minimize(
	evaluator *expectation.Evaluator,
	circ circuit.Operator,
	state *tensor.State,
	observable circuit.Operator,
	values circuit.Values,
	opt Optimizer,
	steps int,
	mode expectation.DiffMode,
) ([]float64, error) {
	return optim.Minimize(evaluator, circ, state, observable, values, opt, steps, mode)
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode differentiation of operator trees.
//
// This package records every contraction, scaling and addition of a forward
// pass on a gradient tape and walks it backwards to compute parameter
// gradients. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/qsim/autodiff"
//	    "github.com/born-ml/qsim/backend/cpu"
//	    "github.com/born-ml/qsim/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    energies, grads, err := backend.Expectation(circ, obs, tensor.ZeroState(2, 1), values)
//	}
package autodiff

import (
	"github.com/born-ml/qsim/internal/autodiff"
	"github.com/born-ml/qsim/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend = autodiff.AutodiffBackend

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
func New(backend tensor.Backend) *Backend {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// Gradients holds state cotangents and parameter gradients.
type Gradients = autodiff.Gradients

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

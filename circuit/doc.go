// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package circuit provides differentiable operator trees over qubit registers.
//
// # Overview
//
// An Operator is one of:
//   - Primitive: a fixed or parametric gate (see the gate catalog)
//   - Scale: a child operator multiplied by a parameter
//   - Sequence: children applied in order
//   - Add: the sum of children applied to the same input
//   - Merge: a Sequence over a shared support fused into one matrix
//   - Evolution: exp(-i G t) for a Generator G
//
// Parameters are either Named, resolved from Values at evaluation time, or
// Literal. Values hold one entry per batch element or a single broadcast
// entry.
//
// # Basic Usage
//
//	circ := circuit.NewSequence(
//	    circuit.H(0),
//	    circuit.RX(1, circuit.Named("theta")),
//	    circuit.CNOT(0, 1),
//	)
//	psi, err := circuit.Forward(circ, tensor.ZeroState(2, 1), circuit.Values{"theta": {0.3}})
//
// # Hamiltonian Evolution
//
//	h, _ := circuit.PauliString("ZZ")
//	gen := circuit.NewOperatorGenerator(h)
//	psi, err := circuit.Evolve(gen, circuit.Literal(0.5), state, nil)
package circuit

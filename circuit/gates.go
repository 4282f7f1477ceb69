// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package circuit

import "github.com/born-ml/qsim/internal/circuit"

// Fixed gates.
var (
	I          = circuit.I
	X          = circuit.X
	Y          = circuit.Y
	Z          = circuit.Z
	H          = circuit.H
	S          = circuit.S
	SDagger    = circuit.SDagger
	T          = circuit.T
	N          = circuit.N
	SWAP       = circuit.SWAP
	CNOT       = circuit.CNOT
	CX         = circuit.CX
	CY         = circuit.CY
	CZ         = circuit.CZ
	Toffoli    = circuit.Toffoli
	CSWAP      = circuit.CSWAP
	Projector  = circuit.Projector
	Controlled = circuit.Controlled
)

// Parametric gates.
var (
	RX     = circuit.RX
	RY     = circuit.RY
	RZ     = circuit.RZ
	PHASE  = circuit.PHASE
	U      = circuit.U
	CRX    = circuit.CRX
	CRY    = circuit.CRY
	CRZ    = circuit.CRZ
	CPHASE = circuit.CPHASE
)

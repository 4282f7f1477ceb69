// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides batched quantum state vectors and operator matrices.
//
// # Overview
//
// States and matrices always carry a leading batch dimension:
//   - State: 2^n complex amplitudes per batch element, qubit 0 is the most
//     significant bit of the basis index
//   - Matrix: a batch of square complex matrices acting on a qubit support
//   - Backend: interface for contraction engines (see backend/cpu)
//
// Batch sizes broadcast when one side has batch 1.
//
// # Basic Usage
//
//	import "github.com/born-ml/qsim/tensor"
//
//	func main() {
//	    psi := tensor.ZeroState(3, 1)    // |000>
//	    phi := tensor.UniformState(3, 1) // H⊗H⊗H |000>
//	    overlap, _ := tensor.Overlap(psi, phi)
//	    _ = overlap // [0.125]
//	}
//
// # Precision
//
// Arithmetic runs in complex128. Complex64 precision rounds stored values to
// single precision, see Precision.
package tensor

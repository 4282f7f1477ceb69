// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU contraction backend.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Batched gather/scatter contraction over arbitrary qubit supports
//   - Data-parallel outer loops for large states
//
// # Usage
//
//	backend := cpu.New()
//	out, err := backend.Apply(state, matrix, []int{0, 2})
package cpu

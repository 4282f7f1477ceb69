// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/qsim/internal/tensor"

// Backend contracts operator matrices onto the qubits of a state.
//
// Implementations:
//   - CPU: backend/cpu
type Backend = tensor.Backend

package tensor

import "errors"

// Sentinel errors for state and matrix operations.
var (
	// ErrShapeMismatch reports a batch or qubit-dimension broadcasting failure.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrSingular reports a linear system without a unique solution.
	ErrSingular = errors.New("singular matrix")
	// ErrNotHermitian reports a spectral operation on a non-Hermitian matrix.
	ErrNotHermitian = errors.New("matrix is not Hermitian")
)

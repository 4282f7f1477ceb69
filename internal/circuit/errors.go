package circuit

import "errors"

// Sentinel errors reported by operator construction and evaluation.
//
// Shape and batch broadcasting failures are reported with
// tensor.ErrShapeMismatch.
var (
	// ErrValidation reports a malformed operator: Merge over different
	// supports, projector bitstrings that do not match their support,
	// wrong control/target arity, a repeated qubit, or an empty Add.
	ErrValidation = errors.New("validation error")

	// ErrDiffModeUnsupported reports a differentiation mode that cannot handle
	// the given tree, e.g. adjoint differentiation of a non-unitary node.
	ErrDiffModeUnsupported = errors.New("differentiation mode unsupported")

	// ErrUnboundParameter reports a named parameter missing from the bindings.
	ErrUnboundParameter = errors.New("unbound parameter")

	// ErrUnsupportedDevice reports a retarget request for a device without a
	// contraction backend.
	ErrUnsupportedDevice = errors.New("unsupported device")
)

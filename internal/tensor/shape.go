package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// StateShape returns the logical shape of an n-qubit state with the given batch:
// one axis of size 2 per qubit followed by the batch axis.
func StateShape(nQubits, batch int) Shape {
	shape := make(Shape, nQubits+1)
	for i := 0; i < nQubits; i++ {
		shape[i] = 2
	}
	shape[nQubits] = batch
	return shape
}

// QubitStride returns the distance, in basis indices, between the two values of
// qubit q in an n-qubit register. Qubit 0 is the most significant axis.
func QubitStride(nQubits, q int) int {
	return 1 << (nQubits - 1 - q)
}

// BroadcastBatch implements the batch broadcasting rule shared by states and
// matrices: equal sizes are kept, a size of 1 stretches to the other size,
// anything else is a shape mismatch.
//
// Examples:
//
//	(1, 5) → 5
//	(5, 5) → 5
//	(2, 5) → ErrShapeMismatch
func BroadcastBatch(a, b int) (int, error) {
	switch {
	case a < 1 || b < 1:
		return 0, fmt.Errorf("%w: empty batch (%d, %d)", ErrShapeMismatch, a, b)
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	default:
		return 0, fmt.Errorf("%w: batch sizes %d and %d are not broadcastable", ErrShapeMismatch, a, b)
	}
}

// BatchIndex maps an output batch element onto an operand of the given batch
// size, honoring broadcasting of size-1 operands.
func BatchIndex(size, b int) int {
	if size == 1 {
		return 0
	}
	return b
}

// ValidateSupport checks that every index of support addresses one of nQubits
// qubits and that no index repeats.
func ValidateSupport(support []int, nQubits int) error {
	seen := make(map[int]struct{}, len(support))
	for _, q := range support {
		if q < 0 || q >= nQubits {
			return fmt.Errorf("%w: qubit %d outside register of %d qubits", ErrShapeMismatch, q, nQubits)
		}
		if _, dup := seen[q]; dup {
			return fmt.Errorf("%w: qubit %d repeated in support %v", ErrShapeMismatch, q, support)
		}
		seen[q] = struct{}{}
	}
	return nil
}

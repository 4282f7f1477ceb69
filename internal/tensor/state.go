package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
)

// State is a batched complex state vector.
//
// Amplitudes are laid out row-major over StateShape(n, batch): one axis of
// size 2 per qubit, qubit 0 first, followed by the batch axis. The amplitude
// of basis index i for batch element b lives at data[i*batch+b], where bit
// (n-1-q) of i holds the value of qubit q.
//
// States are treated as immutable: operations return new states.
type State struct {
	nQubits int
	batch   int
	data    []complex128
}

// NewState wraps amplitudes as a state. The slice is owned by the state after
// the call; its length must be 2^nQubits * batch.
func NewState(nQubits, batch int, amplitudes []complex128) (*State, error) {
	if nQubits < 0 {
		return nil, fmt.Errorf("%w: negative qubit count %d", ErrShapeMismatch, nQubits)
	}
	shape := StateShape(nQubits, batch)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	want := shape.NumElements()
	if len(amplitudes) != want {
		return nil, fmt.Errorf("%w: %d amplitudes for %d qubits and batch %d (want %d)",
			ErrShapeMismatch, len(amplitudes), nQubits, batch, want)
	}
	return &State{nQubits: nQubits, batch: batch, data: amplitudes}, nil
}

// Zeros returns an all-zero (unnormalized) state.
func Zeros(nQubits, batch int) *State {
	return &State{
		nQubits: nQubits,
		batch:   batch,
		data:    make([]complex128, (1<<nQubits)*batch),
	}
}

// ZeroState returns |0...0> repeated over the batch.
func ZeroState(nQubits, batch int) *State {
	s := Zeros(nQubits, batch)
	for b := 0; b < batch; b++ {
		s.data[b] = 1
	}
	return s
}

// UniformState returns the equal superposition of all basis states.
func UniformState(nQubits, batch int) *State {
	s := Zeros(nQubits, batch)
	amp := complex(1/math.Sqrt(float64(int(1)<<nQubits)), 0)
	for i := range s.data {
		s.data[i] = amp
	}
	return s
}

// ProductState returns the computational basis state named by bits, where
// bits[q] is the value of qubit q.
func ProductState(bits string, batch int) (*State, error) {
	idx := 0
	for _, ch := range bits {
		idx <<= 1
		switch ch {
		case '0':
		case '1':
			idx |= 1
		default:
			return nil, fmt.Errorf("invalid bitstring %q: only '0' and '1' are allowed", bits)
		}
	}
	s := Zeros(len(bits), batch)
	for b := 0; b < batch; b++ {
		s.data[idx*batch+b] = 1
	}
	return s, nil
}

// RandomState draws a normalized state per batch element with Gaussian
// amplitudes.
func RandomState(nQubits, batch int, rng *rand.Rand) *State {
	s := Zeros(nQubits, batch)
	for i := range s.data {
		s.data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	norms := s.Norms()
	dim := s.Dim()
	for i := 0; i < dim; i++ {
		for b := 0; b < batch; b++ {
			s.data[i*batch+b] /= complex(math.Sqrt(norms[b]), 0)
		}
	}
	return s
}

// NumQubits returns the number of qubits.
func (s *State) NumQubits() int { return s.nQubits }

// Batch returns the batch size.
func (s *State) Batch() int { return s.batch }

// Dim returns the Hilbert space dimension 2^n.
func (s *State) Dim() int { return 1 << s.nQubits }

// Shape returns the logical shape of the state.
func (s *State) Shape() Shape { return StateShape(s.nQubits, s.batch) }

// Data returns the underlying amplitudes. The slice must not be modified.
func (s *State) Data() []complex128 { return s.data }

// At returns the amplitude of basis index i in batch element b.
func (s *State) At(i, b int) complex128 { return s.data[i*s.batch+b] }

// Column returns a copy of the amplitudes of batch element b.
func (s *State) Column(b int) []complex128 {
	col := make([]complex128, s.Dim())
	for i := range col {
		col[i] = s.data[i*s.batch+b]
	}
	return col
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	data := make([]complex128, len(s.data))
	copy(data, s.data)
	return &State{nQubits: s.nQubits, batch: s.batch, data: data}
}

// Broadcast returns the state stretched to the given batch size.
func (s *State) Broadcast(batch int) (*State, error) {
	if batch == s.batch {
		return s, nil
	}
	if s.batch != 1 {
		return nil, fmt.Errorf("%w: cannot broadcast batch %d to %d", ErrShapeMismatch, s.batch, batch)
	}
	out := Zeros(s.nQubits, batch)
	for i, amp := range s.data {
		for b := 0; b < batch; b++ {
			out.data[i*batch+b] = amp
		}
	}
	return out, nil
}

// SumToBatch reduces a broadcast state back to the given batch size by summing
// over the batch axis. It is the adjoint of Broadcast.
func (s *State) SumToBatch(batch int) (*State, error) {
	if batch == s.batch {
		return s, nil
	}
	if batch != 1 {
		return nil, fmt.Errorf("%w: cannot reduce batch %d to %d", ErrShapeMismatch, s.batch, batch)
	}
	out := Zeros(s.nQubits, 1)
	for i := range out.data {
		var sum complex128
		for b := 0; b < s.batch; b++ {
			sum += s.data[i*s.batch+b]
		}
		out.data[i] = sum
	}
	return out, nil
}

// ScaleBatch multiplies batch element b by factors[BatchIndex(len(factors), b)].
// The result batch follows BroadcastBatch(s.Batch(), len(factors)).
func (s *State) ScaleBatch(factors []complex128) (*State, error) {
	batch, err := BroadcastBatch(s.batch, len(factors))
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	out := Zeros(s.nQubits, batch)
	dim := s.Dim()
	for i := 0; i < dim; i++ {
		for b := 0; b < batch; b++ {
			out.data[i*batch+b] = s.data[i*s.batch+BatchIndex(s.batch, b)] * factors[BatchIndex(len(factors), b)]
		}
	}
	return out, nil
}

// Add returns the elementwise sum s + other with batch broadcasting.
func (s *State) Add(other *State) (*State, error) {
	if s.nQubits != other.nQubits {
		return nil, fmt.Errorf("%w: cannot add states of %d and %d qubits", ErrShapeMismatch, s.nQubits, other.nQubits)
	}
	batch, err := BroadcastBatch(s.batch, other.batch)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	out := Zeros(s.nQubits, batch)
	dim := s.Dim()
	for i := 0; i < dim; i++ {
		for b := 0; b < batch; b++ {
			out.data[i*batch+b] = s.data[i*s.batch+BatchIndex(s.batch, b)] +
				other.data[i*other.batch+BatchIndex(other.batch, b)]
		}
	}
	return out, nil
}

// Round returns the state with amplitudes stored at precision p.
func (s *State) Round(p Precision) *State {
	if p == Complex128 {
		return s
	}
	out := s.Clone()
	for i, v := range out.data {
		out.data[i] = p.round(v)
	}
	return out
}

// Norms returns sum(|amplitude|^2) for every batch element.
func (s *State) Norms() []float64 {
	norms := make([]float64, s.batch)
	for i, amp := range s.data {
		norms[i%s.batch] += real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	return norms
}

// IsNormalized reports whether every batch element has unit norm within tol.
func (s *State) IsNormalized(tol float64) bool {
	for _, n := range s.Norms() {
		if math.Abs(n-1) > tol {
			return false
		}
	}
	return true
}

// AllClose reports whether both states hold the same amplitudes within
// atol + rtol*|other|. Batch sizes must be broadcastable.
func (s *State) AllClose(other *State, rtol, atol float64) bool {
	if s.nQubits != other.nQubits {
		return false
	}
	batch, err := BroadcastBatch(s.batch, other.batch)
	if err != nil {
		return false
	}
	dim := s.Dim()
	for i := 0; i < dim; i++ {
		for b := 0; b < batch; b++ {
			a := s.data[i*s.batch+BatchIndex(s.batch, b)]
			o := other.data[i*other.batch+BatchIndex(other.batch, b)]
			if !closeTo(a, o, rtol, atol) {
				return false
			}
		}
	}
	return true
}

// String renders the amplitudes per batch element.
func (s *State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "State(qubits=%d, batch=%d)", s.nQubits, s.batch)
	for b := 0; b < s.batch; b++ {
		fmt.Fprintf(&sb, "\n  [%d]", b)
		for i := 0; i < s.Dim(); i++ {
			fmt.Fprintf(&sb, " %.4f", s.At(i, b))
		}
	}
	return sb.String()
}

// Inner returns <a|b> for every broadcast batch element.
func Inner(a, b *State) ([]complex128, error) {
	if a.nQubits != b.nQubits {
		return nil, fmt.Errorf("%w: inner product of %d and %d qubit states", ErrShapeMismatch, a.nQubits, b.nQubits)
	}
	batch, err := BroadcastBatch(a.batch, b.batch)
	if err != nil {
		return nil, fmt.Errorf("inner: %w", err)
	}
	out := make([]complex128, batch)
	dim := a.Dim()
	for i := 0; i < dim; i++ {
		for k := 0; k < batch; k++ {
			out[k] += cmplx.Conj(a.data[i*a.batch+BatchIndex(a.batch, k)]) * b.data[i*b.batch+BatchIndex(b.batch, k)]
		}
	}
	return out, nil
}

// Overlap returns the fidelity |<a|b>|^2 for every broadcast batch element.
func Overlap(a, b *State) ([]float64, error) {
	inner, err := Inner(a, b)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(inner))
	for i, v := range inner {
		out[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	return out, nil
}

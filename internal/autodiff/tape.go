package autodiff

import (
	"fmt"

	"github.com/born-ml/qsim/internal/autodiff/ops"
	"github.com/born-ml/qsim/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	grads, err := tape.Backward(seeds, sizes, backend)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// Gradients holds the result of a backward pass.
type Gradients struct {
	// States maps every state reached by the backward pass to its cotangent.
	States map[*tensor.State]*tensor.State
	// Params maps parameter names to dL/dθ, one entry per bound value.
	Params map[string][]float64
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64), // Pre-allocate for common case
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// Backward computes cotangents and parameter gradients by walking the tape in
// reverse.
//
// Algorithm:
//  1. Start with the seed cotangents (dL/dz for every state z the loss reads)
//  2. Walk operations in reverse order
//  3. For each operation, compute input cotangents using the chain rule
//  4. Accumulate cotangents when the same state is used multiple times
//  5. Accumulate parameter contributions of parametric operations
//
// sizes gives the number of bound values of every parameter. A contribution of
// output batch element b goes to entry BatchIndex(sizes[name], b), so a
// broadcast (single value) parameter receives the sum over the batch.
func (t *GradientTape) Backward(
	seeds map[*tensor.State]*tensor.State,
	sizes map[string]int,
	backend tensor.Backend,
) (*Gradients, error) {
	// Stop recording during backward pass to prevent recording gradient operations
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads := &Gradients{
		States: make(map[*tensor.State]*tensor.State, len(t.operations)+len(seeds)),
		Params: make(map[string][]float64),
	}
	for state, seed := range seeds {
		if err := accumulateState(grads.States, state, seed); err != nil {
			return nil, err
		}
	}

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outputGrad, ok := grads.States[op.Output()]
		if !ok {
			continue
		}

		if pop, ok := op.(ops.ParametricOperation); ok {
			contributions, err := pop.ParamGrads(outputGrad, backend)
			if err != nil {
				return nil, err
			}
			if err := accumulateParams(grads.Params, contributions, sizes); err != nil {
				return nil, err
			}
		}

		inputGrads, err := op.Backward(outputGrad, backend)
		if err != nil {
			return nil, err
		}
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if err := accumulateState(grads.States, input, inputGrads[j]); err != nil {
				return nil, err
			}
		}
	}

	return grads, nil
}

// accumulateState adds grad to the cotangent of state.
func accumulateState(grads map[*tensor.State]*tensor.State, state, grad *tensor.State) error {
	existing, ok := grads[state]
	if !ok {
		grads[state] = grad
		return nil
	}
	sum, err := existing.Add(grad)
	if err != nil {
		return fmt.Errorf("accumulate cotangent: %w", err)
	}
	grads[state] = sum
	return nil
}

// accumulateParams reduces per-batch contributions onto the bound values.
func accumulateParams(params map[string][]float64, contributions map[string][]float64, sizes map[string]int) error {
	for name, contrib := range contributions {
		size, ok := sizes[name]
		if !ok {
			size = 1
		}
		if size != 1 && size != len(contrib) {
			return fmt.Errorf("%w: parameter %q has %d values, contribution has batch %d",
				tensor.ErrShapeMismatch, name, size, len(contrib))
		}
		acc, ok := params[name]
		if !ok {
			acc = make([]float64, size)
			params[name] = acc
		}
		for b, v := range contrib {
			acc[tensor.BatchIndex(size, b)] += v
		}
	}
	return nil
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

package autodiff

import (
	"fmt"
	"slices"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

// Expectation computes E_b = Re<psi_b|O|psi_b> for psi = circ(state) and the
// gradient of sum_b E_b with respect to every named parameter of circ and
// observable that is bound in values.
//
// The forward pass of circuit and observable is recorded on the tape, keeping
// every intermediate state, and the tape is cleared afterwards. The loss reads
// psi and phi = O psi, so the seeds are grad_phi = psi and grad_psi = phi.
//
// Gradients have one entry per bound value: a parameter bound to a single
// value receives the sum over the batch, a per-batch parameter receives one
// derivative per batch element.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	energies, grads, err := backend.Expectation(circ, obs, tensor.ZeroState(4, 1), values)
//	dEdTheta := grads["theta"]
func (b *AutodiffBackend) Expectation(
	circ, observable circuit.Operator,
	state *tensor.State,
	values circuit.Values,
) ([]float64, map[string][]float64, error) {
	b.tape.Clear()
	b.tape.StartRecording()
	defer func() {
		b.tape.StopRecording()
		b.tape.Clear()
	}()

	psi, err := b.Forward(circ, state, values)
	if err != nil {
		return nil, nil, fmt.Errorf("circuit: %w", err)
	}
	phi, err := b.Forward(observable, psi, values)
	if err != nil {
		return nil, nil, fmt.Errorf("observable: %w", err)
	}
	inner, err := tensor.Inner(psi, phi)
	if err != nil {
		return nil, nil, err
	}
	energies := make([]float64, len(inner))
	for i, v := range inner {
		energies[i] = real(v)
	}

	seeds := map[*tensor.State]*tensor.State{psi: phi}
	if phi == psi {
		// The observable returned its input: E = <psi|psi>.
		if seeds[psi], err = psi.ScaleBatch([]complex128{2}); err != nil {
			return nil, nil, err
		}
	} else {
		seeds[phi] = psi
	}

	sizes := make(map[string]int, len(values))
	for name, vals := range values {
		sizes[name] = len(vals)
	}
	grads, err := b.tape.Backward(seeds, sizes, b.inner)
	if err != nil {
		return nil, nil, fmt.Errorf("backward: %w", err)
	}

	out := make(map[string][]float64)
	for _, name := range gradientNames(circ, observable) {
		size, bound := sizes[name]
		if !bound {
			continue
		}
		if g, ok := grads.Params[name]; ok {
			out[name] = g
		} else {
			out[name] = make([]float64, size)
		}
	}
	return energies, out, nil
}

// gradientNames returns the named parameters of circ followed by those of
// observable.
func gradientNames(circ, observable circuit.Operator) []string {
	names := circ.ParamNames()
	for _, n := range observable.ParamNames() {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

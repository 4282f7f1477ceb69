package expectation

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/born-ml/qsim/internal/circuit"
	"github.com/born-ml/qsim/internal/tensor"
)

func TestDiffModeParity(t *testing.T) {
	Convey("Given the 4-qubit rotation circuit measured on Z(0)", t, func() {
		circ := circuit.NewSequence(
			circuit.RX(0, circuit.Named("t0")),
			circuit.CPHASE(0, 1, circuit.Named("t1")),
			circuit.RZ(2, circuit.Named("t2")),
			circuit.CNOT(1, 2),
		)
		obs := circuit.Z(0)
		state := tensor.ZeroState(4, 1)
		values := circuit.Values{"t0": {math.Pi / 2}, "t1": {math.Pi}, "t2": {math.Pi / 4}}
		evaluator := NewEvaluator(DefaultConfig())

		Convey("When differentiating in standard and adjoint mode", func() {
			standard, err := evaluator.Expectation(circ, state, values, obs, Standard)
			So(err, ShouldBeNil)
			adj, err := evaluator.Expectation(circ, state, values, obs, Adjoint)
			So(err, ShouldBeNil)

			Convey("Then the expectation values agree", func() {
				So(len(adj.Values), ShouldEqual, 1)
				So(adj.Values[0], ShouldAlmostEqual, standard.Values[0], 1e-5)
				So(adj.Values[0], ShouldAlmostEqual, 0, 1e-10)
			})

			Convey("Then the gradients agree for every parameter", func() {
				for _, name := range []string{"t0", "t1", "t2"} {
					So(len(adj.Gradients[name]), ShouldEqual, 1)
					So(adj.Gradients[name][0], ShouldAlmostEqual, standard.Gradients[name][0], 1e-5)
				}
				So(adj.Gradients["t0"][0], ShouldAlmostEqual, -1, 1e-10)
				So(adj.Gradients["t1"][0], ShouldAlmostEqual, 0, 1e-10)
				So(adj.Gradients["t2"][0], ShouldAlmostEqual, 0, 1e-10)
			})
		})

		Convey("When evaluating without gradients", func() {
			energies, err := evaluator.Evaluate(circ, state, values, obs)

			Convey("Then the value matches cos(t0)", func() {
				So(err, ShouldBeNil)
				So(energies[0], ShouldAlmostEqual, 0, 1e-10)
			})
		})
	})
}

func TestHamiltonianOverlap(t *testing.T) {
	Convey("Given a uniform 4-qubit state and H = Z⊗Z⊗Z⊗Z", t, func() {
		hamiltonian, err := circuit.PauliString("ZZZZ")
		So(err, ShouldBeNil)
		generator := circuit.NewOperatorGenerator(hamiltonian)
		initial := tensor.UniformState(4, 1)

		Convey("When evolving for time π/4", func() {
			final, err := circuit.Evolve(generator, circuit.Literal(math.Pi/4), initial, nil)
			So(err, ShouldBeNil)

			Convey("Then the state stays normalized with overlap 0.5", func() {
				So(final.IsNormalized(1e-10), ShouldBeTrue)
				overlap, err := tensor.Overlap(initial, final)
				So(err, ShouldBeNil)
				So(overlap[0], ShouldAlmostEqual, 0.5, 1e-10)
			})
		})
	})
}

func TestModes(t *testing.T) {
	Convey("Given a circuit with a scaled sum", t, func() {
		circ := circuit.NewAdd(
			circuit.NewScale(circuit.RX(0, circuit.Named("a")), circuit.Named("w")),
			circuit.X(0),
		)
		values := circuit.Values{"a": {0.3}, "w": {0.5}}

		Convey("Standard mode differentiates it", func() {
			res, err := Expectation(circ, tensor.ZeroState(1, 1), values, circuit.Z(0), Standard)
			So(err, ShouldBeNil)
			So(res.Gradients, ShouldContainKey, "a")
			So(res.Gradients, ShouldContainKey, "w")
		})

		Convey("Adjoint mode rejects it instead of falling back", func() {
			_, err := Expectation(circ, tensor.ZeroState(1, 1), values, circuit.Z(0), Adjoint)
			So(errors.Is(err, ErrDiffModeUnsupported), ShouldBeTrue)
		})

		Convey("Unknown modes are rejected", func() {
			_, err := Expectation(circ, tensor.ZeroState(1, 1), values, circuit.Z(0), DiffMode(7))
			So(errors.Is(err, ErrUnknownDiffMode), ShouldBeTrue)
			So(errors.Is(err, ErrDiffModeUnsupported), ShouldBeFalse)
		})
	})

	Convey("Given mode names", t, func() {
		So(Standard.String(), ShouldEqual, "standard")
		So(Adjoint.String(), ShouldEqual, "adjoint")

		mode, err := ParseDiffMode("adjoint")
		So(err, ShouldBeNil)
		So(mode, ShouldEqual, Adjoint)

		_, err = ParseDiffMode("forward")
		So(errors.Is(err, ErrUnknownDiffMode), ShouldBeTrue)
		So(errors.Is(err, ErrDiffModeUnsupported), ShouldBeFalse)
	})
}

func TestBatchedTotal(t *testing.T) {
	Convey("Given per-batch rotation angles", t, func() {
		thetas := []float64{0, math.Pi / 3, math.Pi}
		res, err := Expectation(circuit.RY(0, circuit.Named("theta")), tensor.ZeroState(1, 1),
			circuit.Values{"theta": thetas}, circuit.Z(0), Adjoint)
		So(err, ShouldBeNil)

		Convey("Then every batch element has its own value and derivative", func() {
			So(len(res.Values), ShouldEqual, 3)
			for b, theta := range thetas {
				So(res.Values[b], ShouldAlmostEqual, math.Cos(theta), 1e-10)
				So(res.Gradients["theta"][b], ShouldAlmostEqual, -math.Sin(theta), 1e-10)
			}
			So(res.Total(), ShouldAlmostEqual, 1+0.5-1, 1e-10)
		})
	})
}

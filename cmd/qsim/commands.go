package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"

	"github.com/born-ml/qsim/circuit"
	"github.com/born-ml/qsim/expectation"
	"github.com/born-ml/qsim/internal/serialization"
	"github.com/born-ml/qsim/optim"
	"github.com/born-ml/qsim/tensor"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                8,
}

func newEvaluator(logger *log.Logger) *expectation.Evaluator {
	cfg := expectation.DefaultConfig()
	if logger.GetLevel() <= log.DebugLevel {
		cfg.Instrument = circuit.NewLogInstrument(logger)
	}
	return expectation.NewEvaluator(cfg)
}

func parseModes(s string) ([]expectation.DiffMode, error) {
	if s == "both" {
		return []expectation.DiffMode{expectation.Standard, expectation.Adjoint}, nil
	}
	mode, err := expectation.ParseDiffMode(s)
	if err != nil {
		return nil, err
	}
	return []expectation.DiffMode{mode}, nil
}

func runScenario(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("scenario", flag.ExitOnError)
	modeFlag := fs.String("mode", "both", "differentiation mode (standard, adjoint, both)")
	dump := fs.Bool("dump", false, "dump the operator tree")
	_ = fs.Parse(args)

	modes, err := parseModes(*modeFlag)
	if err != nil {
		return err
	}

	circ := circuit.NewSequence(
		circuit.RX(0, circuit.Named("t0")),
		circuit.CPHASE(0, 1, circuit.Named("t1")),
		circuit.RZ(2, circuit.Named("t2")),
		circuit.CNOT(1, 2),
	)
	obs := circuit.Z(0)
	values := circuit.Values{"t0": {math.Pi / 2}, "t1": {math.Pi}, "t2": {math.Pi / 4}}
	if *dump {
		dumper.Dump(circ)
	}

	evaluator := newEvaluator(logger)
	header := []string{"mode", "E", "dE/dt0", "dE/dt1", "dE/dt2"}
	var rows [][]string
	for _, mode := range modes {
		logger.Debug("differentiating", "mode", mode)
		res, err := evaluator.Expectation(circ, tensor.ZeroState(4, 1), values, obs, mode)
		if err != nil {
			return err
		}
		row := []string{mode.String(), formatFloat(res.Values[0])}
		for _, name := range header[2:] {
			row = append(row, formatFloat(res.Gradients[strings.TrimPrefix(name, "dE/d")][0]))
		}
		rows = append(rows, row)
	}
	fmt.Println(table("4-qubit scenario, observable Z(0)", header, rows))
	return nil
}

func runEvolve(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("evolve", flag.ExitOnError)
	paulis := fs.String("hamiltonian", "ZZZZ", "Pauli string of the generator")
	timesFlag := fs.String("times", "0.7853981633974483,0,1.5707963267948966,3.141592653589793", "comma separated evolution times")
	dump := fs.Bool("dump", false, "dump the generator")
	_ = fs.Parse(args)

	times, err := parseFloats(*timesFlag)
	if err != nil {
		return err
	}
	hamiltonian, err := circuit.PauliString(*paulis)
	if err != nil {
		return err
	}
	generator := circuit.NewOperatorGenerator(hamiltonian)
	if *dump {
		dumper.Dump(generator)
	}

	nQubits := len(*paulis)
	initial := tensor.UniformState(nQubits, 1)
	logger.Debug("evolving", "qubits", nQubits, "times", len(times))
	final, err := circuit.Evolve(generator, circuit.Literal(times...), initial, nil)
	if err != nil {
		return err
	}
	overlaps, err := tensor.Overlap(initial, final)
	if err != nil {
		return err
	}

	rows := make([][]string, len(times))
	for i, t := range times {
		rows[i] = []string{strconv.FormatFloat(t, 'f', 6, 64), formatFloat(overlaps[i])}
	}
	fmt.Println(table("|<psi(0)|psi(t)>|^2 under "+*paulis, []string{"t", "overlap"}, rows))
	return nil
}

func runVQE(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("vqe", flag.ExitOnError)
	nQubits := fs.Int("qubits", 3, "number of qubits")
	nTerms := fs.Int("terms", 6, "number of Pauli terms")
	layers := fs.Int("layers", 2, "ansatz layers")
	steps := fs.Int("steps", 150, "optimization steps")
	lr := fs.Float64("lr", 0.05, "learning rate")
	seed := fs.Int64("seed", 1, "random seed")
	modeFlag := fs.String("mode", "adjoint", "differentiation mode (standard, adjoint)")
	optimizer := fs.String("optimizer", "adam", "optimizer (sgd, adam)")
	dump := fs.Bool("dump", false, "dump the Hamiltonian and ansatz")
	load := fs.String("load", "", "resume from a .qsim parameter checkpoint")
	save := fs.String("save", "", "write the optimized parameters to a .qsim checkpoint")
	_ = fs.Parse(args)

	mode, err := expectation.ParseDiffMode(*modeFlag)
	if err != nil {
		return err
	}
	var opt optim.Optimizer
	switch *optimizer {
	case "sgd":
		opt = optim.NewSGD(optim.SGDConfig{LR: *lr, Momentum: 0.9})
	case "adam":
		opt = optim.NewAdam(optim.AdamConfig{LR: *lr})
	default:
		return fmt.Errorf("unknown optimizer %q", *optimizer)
	}

	rng := rand.New(rand.NewSource(*seed))
	hamiltonian, err := circuit.RandomPauliHamiltonian(*nQubits, *nTerms, rng)
	if err != nil {
		return err
	}
	ansatz, values := layeredAnsatz(*nQubits, *layers, rng)
	if *load != "" {
		loaded, header, err := serialization.LoadFile(*load)
		if err != nil {
			return err
		}
		for name := range values {
			if v, ok := loaded[name]; ok {
				values[name] = v
			}
		}
		if header.Checkpoint != nil {
			logger.Info("resumed", "path", *load, "step", header.Checkpoint.Step, "energy", header.Checkpoint.Energy)
		}
	}
	if *dump {
		dumper.Dump(hamiltonian, ansatz)
	}

	logger.Info("minimizing", "qubits", *nQubits, "terms", *nTerms, "params", len(values), "mode", mode)
	trace, err := optim.Minimize(newEvaluator(logger), ansatz, tensor.ZeroState(*nQubits, 1),
		hamiltonian, values, opt, *steps, mode)
	if err != nil {
		return err
	}

	if *save != "" {
		header := serialization.Header{
			Metadata: map[string]string{"seed": strconv.FormatInt(*seed, 10)},
			Checkpoint: &serialization.CheckpointMeta{
				Step:            *steps,
				Energy:          trace[len(trace)-1],
				Mode:            mode.String(),
				OptimizerType:   *optimizer,
				OptimizerConfig: map[string]any{"lr": opt.GetLR()},
			},
		}
		if err := serialization.SaveFile(*save, values, header); err != nil {
			return err
		}
		logger.Info("saved checkpoint", "path", *save)
	}

	exact, err := groundEnergy(hamiltonian, *nQubits)
	if err != nil {
		return err
	}
	rows := [][]string{
		{"initial", formatFloat(trace[0])},
		{"final", formatFloat(trace[len(trace)-1])},
		{"ground", formatFloat(exact)},
	}
	fmt.Println(table(fmt.Sprintf("VQE, %d steps (%s, %s)", *steps, mode, *optimizer), []string{"", "energy"}, rows))
	return nil
}

// layeredAnsatz returns layers of RY/RZ rotations followed by a CNOT chain,
// with random initial angles.
func layeredAnsatz(nQubits, layers int, rng *rand.Rand) (circuit.Operator, circuit.Values) {
	values := circuit.Values{}
	var ops []circuit.Operator
	for l := 0; l < layers; l++ {
		for q := 0; q < nQubits; q++ {
			ry := fmt.Sprintf("ry_%d_%d", l, q)
			rz := fmt.Sprintf("rz_%d_%d", l, q)
			values[ry] = []float64{rng.Float64() * 2 * math.Pi}
			values[rz] = []float64{rng.Float64() * 2 * math.Pi}
			ops = append(ops, circuit.RY(q, circuit.Named(ry)), circuit.RZ(q, circuit.Named(rz)))
		}
		for q := 0; q+1 < nQubits; q++ {
			ops = append(ops, circuit.CNOT(q, q+1))
		}
	}
	return circuit.NewSequence(ops...), values
}

// groundEnergy returns the smallest eigenvalue of hamiltonian.
func groundEnergy(hamiltonian circuit.Operator, nQubits int) (float64, error) {
	all := make([]int, nQubits)
	for i := range all {
		all[i] = i
	}
	h, err := circuit.Tensor(hamiltonian, nil, all)
	if err != nil {
		return 0, err
	}
	values, err := tensor.EigenvaluesHermitian(h)
	if err != nil {
		return 0, err
	}
	return values[0][0], nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

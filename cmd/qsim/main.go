// Package main provides the qsim CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

const version = "v0.1.0-dev"

type command struct {
	name  string
	usage string
	run   func(args []string, logger *log.Logger) error
}

var commands = []command{
	{"version", "Show version", func([]string, *log.Logger) error {
		fmt.Printf("qsim %s\n", version)
		return nil
	}},
	{"scenario", "Differentiate the 4-qubit rotation circuit in both modes", runScenario},
	{"evolve", "Evolve the uniform state under a Pauli Hamiltonian", runEvolve},
	{"vqe", "Minimize a random Pauli Hamiltonian with a layered ansatz", runVQE},
}

func main() {
	global := flag.NewFlagSet("qsim", flag.ExitOnError)
	level := global.String("log-level", "info", "log level (debug, info, warn, error)")
	global.Usage = usage
	_ = global.Parse(os.Args[1:])

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "qsim"})
	lvl, err := log.ParseLevel(*level)
	if err != nil {
		logger.Fatal("invalid log level", "level", *level, "err", err)
	}
	logger.SetLevel(lvl)

	args := global.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		if err := cmd.run(args[1:], logger); err != nil {
			logger.Error(cmd.name+" failed", "err", err)
			os.Exit(1)
		}
		return
	}
	logger.Error("unknown command", "command", args[0])
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, titleStyle.Render("qsim - differentiable state-vector simulation"))
	fmt.Fprintf(os.Stderr, "Version: %s\n\n", version)
	fmt.Fprintln(os.Stderr, "Usage: qsim [-log-level level] <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", cmd.name, cmd.usage)
	}
}

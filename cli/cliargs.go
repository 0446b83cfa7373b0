// Package cli parses command-line flags and runs schedsim's two mutually
// exclusive modes: training a swarm, or running the fixed benchmark suite.
package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// CLIArgs holds every option passed via the command line. It is populated
// once in ParseFlags and then passed around the app.
type CLIArgs struct {
	TrainSwarm    bool   // run mode: --train-swarm
	RunBenchmarks bool   // run mode: --run-benchmarks
	ConfigPath    string // path to config.yml
	ResultsDir    string // root directory for CSV/PNG output
	ResumeFrom    string // optional checkpoint db to resume swarm training from
	ShowVersion   bool
	ShowHelp      bool
}

// Version information, set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

// ParseFlags reads command-line flags into a CLIArgs.
func ParseFlags() CLIArgs {
	var args CLIArgs

	pflag.BoolVar(&args.TrainSwarm, "train-swarm", false, "Train the PSO swarm against config.yml's swarm section")
	pflag.BoolVar(&args.RunBenchmarks, "run-benchmarks", false, "Run the six fixed benchmark configurations")
	pflag.StringVar(&args.ConfigPath, "config", "config.yml", "Path to the YAML configuration file")
	pflag.StringVar(&args.ResultsDir, "results-dir", "results", "Root directory for CSV/PNG output")
	pflag.StringVar(&args.ResumeFrom, "resume", "", "Resume swarm training from a checkpoint database")
	pflag.BoolVar(&args.ShowVersion, "version", false, "Print version information and exit")
	pflag.BoolVarP(&args.ShowHelp, "help", "h", false, "Show this help message")

	pflag.Parse()
	return args
}

// Validate checks that exactly one run mode was selected.
func (a CLIArgs) Validate() error {
	if a.ShowHelp || a.ShowVersion {
		return nil
	}
	if a.TrainSwarm == a.RunBenchmarks {
		return fmt.Errorf("exactly one of --train-swarm or --run-benchmarks must be given")
	}
	return nil
}

package cli

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/schedsim/schedsim/checkpoint"
	"github.com/schedsim/schedsim/config"
	"github.com/schedsim/schedsim/csvio"
	"github.com/schedsim/schedsim/experiments"
	"github.com/schedsim/schedsim/internal/metrics"
	"github.com/schedsim/schedsim/logger"
	"github.com/schedsim/schedsim/scheduler"
	"github.com/schedsim/schedsim/swarm"
	"github.com/schedsim/schedsim/visual"
)

// Run dispatches to the selected mode after validating args.
func Run(args CLIArgs) error {
	if args.ShowHelp {
		pflagUsage()
		return nil
	}
	if args.ShowVersion {
		fmt.Printf("schedsim %s (%s)\n", version, commit)
		return nil
	}
	if err := args.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if args.TrainSwarm {
		return runTrainSwarm(args, cfg)
	}
	return runBenchmarks(args, cfg)
}

func pflagUsage() {
	fmt.Println("schedsim --train-swarm | --run-benchmarks [--config config.yml] [--results-dir results]")
}

// runTrainSwarm trains a PSO swarm per config.yml's swarm section,
// checkpointing every epoch and writing the winning config and the cost
// history to CSV.
func runTrainSwarm(args CLIArgs, cfg *config.Config) error {
	log := logger.New("swarm", "info")
	rc := cfg.Swarm
	m := metrics.Get()

	sw, err := swarm.New(rc.Seed, rc.ParticleCount, rc.ServerCount, rc.ExptsCount, log)
	if err != nil {
		return errors.Wrap(err, "create swarm")
	}

	var costExpr *scheduler.CostExpr
	if rc.CostFormula != "" {
		costExpr, err = scheduler.CompileCostExpr(rc.CostFormula)
		if err != nil {
			return errors.Wrap(err, "compile swarm cost formula")
		}
		sw.SetCostExpr(costExpr)
	}

	cpPath := args.ResumeFrom
	if cpPath == "" {
		cpPath = filepath.Join(seedDir(args.ResultsDir, "swarm_training", rc.Seed), "checkpoint.db")
	}
	if err := os.MkdirAll(filepath.Dir(cpPath), 0755); err != nil {
		return errors.Wrap(err, "create checkpoint directory")
	}
	store, err := checkpoint.Open(cpPath)
	if err != nil {
		return errors.Wrap(err, "open checkpoint store")
	}
	defer store.Close()

	startEpoch := 0
	rec, found, err := store.LastEpoch()
	if err != nil {
		return errors.Wrap(err, "read checkpoint")
	}
	if found {
		startEpoch = rec.Epoch + 1
		sw.SeedBest(rec.BestConfig, rec.BestCost)
		log.Infof("resuming swarm training from epoch %d (checkpoint best cost %g)", startEpoch, rec.BestCost)
	}
	if startEpoch >= rc.EpochCount {
		log.Infof("checkpoint already completed all %d epochs, nothing left to train", rc.EpochCount)
	}

	vis := visual.New()
	var records []map[string]float64

	for epoch := startEpoch; epoch < rc.EpochCount; epoch++ {
		costs, err := sw.RunEpochsFrom(epoch, epoch+1, nil)
		if err != nil {
			return errors.Wrap(err, "run swarm epochs")
		}
		ec := costs[0]
		m.RecordEpoch(ec.Epoch, rc.ParticleCount, ec.Mean)
		if err := store.SaveEpoch(checkpoint.Record{
			Epoch:      ec.Epoch,
			BestConfig: sw.BestConfig(),
			BestCost:   sw.BestCost(),
			EpochCost:  ec,
		}); err != nil {
			return errors.Wrap(err, "checkpoint epoch")
		}
		records = append(records, map[string]float64{
			"epoch": float64(ec.Epoch),
			"min":   ec.Min,
			"max":   ec.Max,
			"mean":  ec.Mean,
			"std":   ec.Std,
		})
	}

	dir := seedDir(args.ResultsDir, "swarm_training", rc.Seed)
	if rc.DrawGraph {
		if err := vis.LineGraph(records, filepath.Join(dir, "swarm_costs_graph.csv")); err != nil {
			return errors.Wrap(err, "write swarm costs graph")
		}
	}
	if err := vis.CSV(records, filepath.Join(dir, "swarm_costs.csv")); err != nil {
		return errors.Wrap(err, "write swarm_costs.csv")
	}

	configFile, err := os.Create(filepath.Join(dir, "swarm_best_config.csv"))
	if err != nil {
		return errors.Wrap(err, "create swarm_best_config.csv")
	}
	defer configFile.Close()
	if err := csvio.WriteConfig(configFile, sw.BestConfig()); err != nil {
		return errors.Wrap(err, "write swarm_best_config.csv")
	}

	if rc.DrawGantt {
		sample := experiments.New(true, true, true)
		sample.CostExpr = costExpr
		_, jobs, err := sample.RunExptWithJobs(sw.BestConfig(), rc.ServerCount, rc.Seed, log)
		if err != nil {
			return errors.Wrap(err, "run gantt sample experiment")
		}
		if err := vis.Gantt(jobs, filepath.Join(dir, "swarm_gantt.csv")); err != nil {
			return errors.Wrap(err, "write swarm_gantt.csv")
		}
	}

	log.Infof("swarm training complete: best cost %g", sw.BestCost())
	return nil
}

// benchmarkMode is one of the six fixed configurations run-benchmarks
// exercises.
type benchmarkMode struct {
	name            string
	reconfigEnabled bool
	powerOffEnabled bool
	paramEnabled    bool
	config          func(rc config.RunConfig) (scheduler.Config, error)
}

func runBenchmarks(args CLIArgs, cfg *config.Config) error {
	log := logger.New("benchmarks", "info")
	rc := cfg.Benchmarks
	m := metrics.Get()
	vis := visual.New()

	var costExpr *scheduler.CostExpr
	if rc.CostFormula != "" {
		var err error
		costExpr, err = scheduler.CompileCostExpr(rc.CostFormula)
		if err != nil {
			return errors.Wrap(err, "compile benchmarks cost formula")
		}
	}

	modes := []benchmarkMode{
		{name: "fifo", config: fixedConfig(scheduler.DefaultConfig())},
		{name: "fifo_reconfig", reconfigEnabled: true, config: fixedConfig(scheduler.DefaultConfig())},
		{name: "fifo_poweroff", powerOffEnabled: true, config: fixedConfig(scheduler.DefaultConfig())},
		{name: "fifo_reconfig_poweroff", reconfigEnabled: true, powerOffEnabled: true, config: fixedConfig(scheduler.DefaultConfig())},
		{name: "random_params", reconfigEnabled: true, powerOffEnabled: true, paramEnabled: true, config: randomConfig},
		{name: "swarm_param", reconfigEnabled: true, powerOffEnabled: true, paramEnabled: true, config: swarmBestConfig(args.ResultsDir, log)},
	}

	for _, mode := range modes {
		conf, err := mode.config(rc)
		if err != nil {
			return errors.Wrapf(err, "resolve config for mode %s", mode.name)
		}

		exp := experiments.New(mode.reconfigEnabled, mode.powerOffEnabled, mode.paramEnabled)
		exp.CostExpr = costExpr
		stats, err := exp.RunExpts(conf, rc.ServerCount, rc.ExptsCount, rc.Seed, log)
		if err != nil {
			return errors.Wrapf(err, "run benchmark mode %s", mode.name)
		}

		for _, s := range stats {
			m.RecordExperiment(s.ReconfigCount, s.PowerOffCount)
		}

		dir := filepath.Join(seedDir(args.ResultsDir, "benchmarking_experiments", rc.Seed), mode.name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create directory for mode %s", mode.name)
		}
		f, err := os.Create(filepath.Join(dir, "stats.csv"))
		if err != nil {
			return errors.Wrapf(err, "create stats.csv for mode %s", mode.name)
		}
		if err := csvio.WriteStats(f, stats); err != nil {
			f.Close()
			return errors.Wrapf(err, "write stats.csv for mode %s", mode.name)
		}
		f.Close()

		if rc.DrawGantt {
			_, jobs, err := exp.RunExptWithJobs(conf, rc.ServerCount, rc.Seed, log)
			if err != nil {
				return errors.Wrapf(err, "run gantt sample for mode %s", mode.name)
			}
			if err := vis.Gantt(jobs, filepath.Join(dir, "gantt.csv")); err != nil {
				return errors.Wrapf(err, "write gantt for mode %s", mode.name)
			}
		}

		log.Infof("benchmark mode %s: %d experiments complete", mode.name, len(stats))
	}
	return nil
}

func fixedConfig(c scheduler.Config) func(config.RunConfig) (scheduler.Config, error) {
	return func(config.RunConfig) (scheduler.Config, error) { return c, nil }
}

func randomConfig(rc config.RunConfig) (scheduler.Config, error) {
	return scheduler.RandomConfig(rand.New(rand.NewSource(int64(rc.Seed)))), nil
}

// swarmBestConfig loads a previously trained swarm's winning config from
// swarm_best_config.csv, falling back to the default config (with a
// warning) if no training run has produced one yet.
func swarmBestConfig(resultsDir string, log interface {
	Warnf(string, ...interface{})
}) func(config.RunConfig) (scheduler.Config, error) {
	return func(rc config.RunConfig) (scheduler.Config, error) {
		path := filepath.Join(seedDir(resultsDir, "swarm_training", rc.Seed), "swarm_best_config.csv")
		f, err := os.Open(path)
		if err != nil {
			log.Warnf("no trained swarm config at %s, falling back to defaults: %v", path, err)
			return scheduler.DefaultConfig(), nil
		}
		defer f.Close()
		return csvio.ReadConfig(f)
	}
}

func seedDir(resultsDir, phase string, seed int) string {
	return filepath.Join(resultsDir, phase, "seed_"+strconv.Itoa(seed))
}


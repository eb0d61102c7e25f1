package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MJE43/antwalk/internal/config"
	"github.com/MJE43/antwalk/internal/logging"
	"github.com/MJE43/antwalk/internal/sim"
)

type runFlags struct {
	configPath string
	logLevel   string
	logFormat  string

	region         string
	stepSize       float64
	secondsPerStep float64
	precision      float64
	epochs         int
	maxSteps       int
	workers        int
	timeout        time.Duration
	serverSeed     string
	clientSeed     string
}

func newRunCmd(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of trials and print the mean crossing time",
		Long: `Run walks an ant from the origin until it leaves the region, once per
epoch, and prints the average time to reach the border. Flags override
values from --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, flags)
		},
	}
	bindRunFlags(cmd, flags)
	return cmd
}

func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	def := config.Default()

	f := cmd.Flags()
	f.StringVar(&flags.region, "region", def.Region, "Region to confine the walk to (see 'antwalk regions')")
	f.Float64Var(&flags.stepSize, "step-size", def.StepSize, "Distance moved per step")
	f.Float64Var(&flags.secondsPerStep, "seconds-per-step", def.SecondsPerStep, "Simulated time per step")
	f.Float64Var(&flags.precision, "precision", def.Precision, "Increment used when refining the crossing point")
	f.IntVarP(&flags.epochs, "epochs", "n", def.Epochs, "Number of independent trials")
	f.IntVar(&flags.maxSteps, "max-steps", def.MaxSteps, "Step budget per trial before it is skipped")
	f.IntVar(&flags.workers, "workers", def.Workers, "Parallel workers (0 = GOMAXPROCS)")
	f.DurationVar(&flags.timeout, "timeout", def.Timeout, "Stop the batch after this long and report partial results (0 = none)")
	f.StringVar(&flags.serverSeed, "server-seed", "", "Server seed for the random streams (default: random, logged)")
	f.StringVar(&flags.clientSeed, "client-seed", def.Seed.Client, "Client seed for the random streams")
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags *runFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("region") {
		cfg.Region = flags.region
	}
	if changed("step-size") {
		cfg.StepSize = flags.stepSize
	}
	if changed("seconds-per-step") {
		cfg.SecondsPerStep = flags.secondsPerStep
	}
	if changed("precision") {
		cfg.Precision = flags.precision
	}
	if changed("epochs") {
		cfg.Epochs = flags.epochs
	}
	if changed("max-steps") {
		cfg.MaxSteps = flags.maxSteps
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	if changed("server-seed") {
		cfg.Seed.Server = flags.serverSeed
	}
	if changed("client-seed") {
		cfg.Seed.Client = flags.clientSeed
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}

	return cfg, cfg.Validate()
}

func runBatch(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	logger := logging.New("cli")

	if cfg.FillSeed() {
		logger.Info("generated server seed", "server_seed", cfg.Seed.Server, "client_seed", cfg.Seed.Client)
	}

	runner := sim.NewRunner(sim.WithLogger(logging.New("sim")))
	res, err := runner.Run(cmd.Context(), cfg.Request())
	if errors.Is(err, sim.ErrNoCompletedTrials) {
		return fmt.Errorf("%w: %d of %d trials skipped", err, res.Summary.Skipped, res.Summary.Evaluated)
	}
	if err != nil {
		return err
	}

	logger.Debug("batch statistics",
		"run_id", res.ID,
		"mean", res.Summary.Mean,
		"min", res.Summary.Min,
		"max", res.Summary.Max,
		"std_dev", res.Summary.StdDev,
		"std_err", res.Summary.StdErr,
	)
	if res.Summary.TimedOut {
		logger.Warn("batch timed out, reporting partial results",
			"evaluated", res.Summary.Evaluated, "requested", res.Summary.Requested)
	}

	return writeReport(cmd.OutOrStdout(), res.Summary)
}

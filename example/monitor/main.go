package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	sampler "github.com/l0rem1psum/sampler"
	"github.com/l0rem1psum/sampler/config"
	"github.com/l0rem1psum/sampler/recorder"
	samplerutils "github.com/l0rem1psum/sampler/utils"
	"github.com/spf13/cobra"
)

var (
	configPath string
	rateHz     float64
	duration   time.Duration
	headless   bool
	recordPath string
	dotPath    string
	logLevel   string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream random samples through a sampler core",
	Long: `monitor spawns a sampler worker fed by a uniform random source and renders its
output either in an interactive terminal UI (s: start, x: stop, q: quit) or, with
--headless, as log lines followed by a summary table.`,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().Float64Var(&rateHz, "rate", 0, "Sample rate in Hz (overrides the config file)")
	rootCmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "How long to stream in headless mode")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "Run without the terminal UI")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "Record samples to this SQLite database (overrides the config file)")
	rootCmd.Flags().StringVar(&dotPath, "dot", "", "Write the state machine as a Graphviz file and exit")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logPath, "log-file", "", "Write logs to this file instead of stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if dotPath != "" {
		return writeDot(dotPath)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if rateHz > 0 {
		cfg.RateHz = rateHz
	}
	if recordPath != "" {
		cfg.RecordPath = recordPath
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := append(cfg.Options(), sampler.WithLogger(logger))

	controller, outputs, err := sampler.Spawn(ctx, samplerutils.NewUniformSource(cfg.Seed), opts...)
	if err != nil {
		return fmt.Errorf("failed to spawn sampler: %w", err)
	}
	logger.Info("Sampler spawned", "instance", controller.ID(), "rate_hz", cfg.RateHz)

	var renderers []sampler.Renderer
	if cfg.RecordPath != "" {
		rec, err := recorder.Open(cfg.RecordPath)
		if err != nil {
			_ = controller.Close(context.Background())
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("Failed to close recorder", "error", err)
			}
		}()
		logger.Info("Recording samples", "path", cfg.RecordPath, "session", rec.Session())
		renderers = append(renderers, rec)
	}

	if headless {
		return runHeadless(ctx, logger, controller, outputs, renderers, opts)
	}
	return runTUI(logger, controller, outputs, renderers, cfg.PollPeriod(), opts)
}

func newLogger() (*slog.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case !headless:
		// stderr belongs to the terminal UI
		w = io.Discard
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return slog.New(handler), closeFn, nil
}

func writeDot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sampler.DumpDot(f)
}

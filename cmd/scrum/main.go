package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scrumtool/internal/config"
	"scrumtool/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scrum",
	Short: "Sprint reports and styling for Kanban board snapshots",
	Long: `scrum reads saved (or live) Kanban board pages annotated with story
points and produces the sprint Scrum report: cards and points per member,
per list and for the whole sprint.

It can also restyle a board snapshot: tag the board and its lists with
presentation classes and turn "----" cards into separators.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config %s: %w", configPath, err)
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.L()
		switch _, err := os.Stat(configPath); {
		case err == nil:
			logging.Boot("config loaded from %s", configPath)
		case cmd.Flags().Changed("config"):
			logging.BootWarn("config %s not readable, using defaults: %v", configPath, err)
		default:
			logging.Boot("no config at %s, using defaults", configPath)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	initReportFlags()
	initStyleFlags()
	initCaptureFlags()
	initHistoryFlags()

	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds a command by --timeout and cancels on SIGINT/SIGTERM.
// A zero timeout only cancels on signals.
func commandContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	return tctx, func() {
		cancel()
		stop()
	}
}

// writeOutput writes data to path, or to the command's stdout for "" and
// "-". Unchanged files are left alone and reported as not written.
func writeOutput(cmd *cobra.Command, path string, data []byte) (bool, error) {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err == nil, err
	}
	if old, err := os.ReadFile(path); err == nil && string(old) == string(data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// Package cli implements the gala command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gala/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

type commandTiming struct {
	startedAt time.Time
}

type commandTimingKey struct{}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gala",
	Short: "Gala - event preparation planning engine",
	Long: `Gala turns task analysis feeds into a conflict-checked event
preparation plan: a dependency-ordered timeline, detected scheduling
conflicts, and vendor assignments.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if verbose {
			cfg := observability.EnvLogConfig()
			cfg.Level = observability.LogLevelDebug
			logger = observability.NewLogger(cfg)
		}
		ctx := observability.WithCorrelationID(cmd.Context(), "")
		timing := commandTiming{startedAt: time.Now()}
		cmd.SetContext(withTiming(ctx, timing))
		logger.DebugContext(cmd.Context(), "command start",
			"command", cmd.CommandPath(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		timing, ok := timingFrom(cmd.Context())
		if !ok {
			return
		}
		logger.DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(timing.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command.
func Execute() {
	ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a parent context, so signal
// cancellation reaches the handlers.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

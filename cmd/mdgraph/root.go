package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/mdgraph"
	"github.com/aretw0/mdgraph/internal/compiler"
	"github.com/aretw0/mdgraph/internal/config"
	"github.com/aretw0/mdgraph/internal/logging"
	"github.com/aretw0/mdgraph/internal/presentation/tui"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/spf13/cobra"
)

// Exit codes reported by Execute.
const (
	exitFailure            = 1
	exitInput              = 2
	exitBackendUnavailable = 3
)

var (
	cfgFile string
	debug   bool

	// cfg and logger are set by the root pre-run before any command executes.
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mdgraph",
	Short: "mdgraph turns Markdown diagram documents into Graphviz and Mermaid diagrams",
	Long: `mdgraph reads documents made of "# {Name} [key]" blocks with VAR, FUNC and
F_RELA sections and renders them as record-shaped Graphviz diagrams.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		if debug {
			level = slog.LevelDebug
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
		slog.SetDefault(logger)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), mdgraph.Version)
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// exitCode separates input problems and a missing backend from other failures.
func exitCode(err error) int {
	var agg *compiler.AggregateError
	switch {
	case errors.Is(err, domain.ErrInputNotFound), errors.Is(err, domain.ErrEmptyDiagram), errors.As(err, &agg):
		return exitInput
	case errors.Is(err, domain.ErrBackendUnavailable):
		return exitBackendUnavailable
	}
	return exitFailure
}

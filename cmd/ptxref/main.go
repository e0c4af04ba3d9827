package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ptxref/internal/config"
	"ptxref/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Corpus flags, shared by resolve and table
	workers    int
	strict     bool
	categories []string
	extensions []string
	excludes   []string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ptxref",
	Short: "ptxref - resolve short cross-reference ids in a PreTeXt source tree",
	Long: `ptxref rewrites <xref ref="lst-..."> and <xref ref="fig-..."> references
to the fully-qualified xml:id they are declared under.

It runs in two strict phases: first every document is read and the
resolution table is built, then every document is rewritten in place.
Run it before the documentation build.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	addCorpusFlags(resolveCmd)
	addCorpusFlags(tableCmd)
	tableCmd.Flags().StringVarP(&tableFormat, "format", "f", "yaml", "Output format: yaml or json")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tableCmd)
}

func addCorpusFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "Documents processed concurrently per phase (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on ambiguous or non-idempotent declarations")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Reference prefix (repeatable, default lst-,fig-)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Document extension (repeatable, default .ptx)")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Skip files whose name contains this marker (repeatable, default toctree)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, then applies the positional root and any
// flags set on cmd. It also starts the diagnostic logs.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Root = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("category") {
		cfg.Categories = categories
	}
	if flags.Changed("ext") {
		cfg.Scan.Extensions = extensions
	}
	if flags.Changed("exclude") {
		cfg.Scan.ExcludeNames = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	workspace, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(workspace, cfg.Logging); err != nil {
		logger.Warn("Diagnostic logging disabled", zap.Error(err))
	} else if logging.IsDebugMode() {
		logger.Info("Diagnostic logs enabled", zap.String("dir", filepath.Join(workspace, ".ptxref", "logs")))
	}
	logging.Boot("config loaded from %s: root=%s workers=%d strict=%v", configPath, cfg.Root, cfg.Workers, cfg.Strict)

	return cfg, nil
}

// commandContext bounds a command by --timeout and cancels on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// Package cmd defines the CLI for the eventfeed executable.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/eventfeed/internal/app"
	"github.com/JakeFAU/eventfeed/internal/config"
	"github.com/JakeFAU/eventfeed/internal/logging"
)

type options struct {
	configFile  string
	input       string
	noEnrich    bool
	metricsFile string
}

// newRootCmd creates and configures the root command. Running it with no
// flags reads README.md and prints the feed to stdout.
func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "eventfeed",
		Short: "Build a JSON event feed from a markdown table.",
		Long: `eventfeed reads the event table of a markdown document, resolves each
row's day range against the month anchors in the table, fetches every
listing's page for social metadata and prints the result as JSON.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (defaults and EVENTFEED_* env vars apply without one)")
	flags.StringVar(&opts.input, "input", "", "markdown document to read (default README.md)")
	flags.BoolVar(&opts.noEnrich, "no-enrich", false, "skip fetching listing pages")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	return cmd
}

func run(cmd *cobra.Command, opts *options, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.New(cfg, logger).Run(ctx, stdout)
}

func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("input") {
		cfg.Input.Path = opts.input
	}
	if opts.noEnrich {
		cfg.Enrich.Enabled = false
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Execute is the main entry point.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the root command and reports a fatal error once on stderr.
// It returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "eventfeed: %v\n", err)
		return 1
	}
	return 0
}

// Package cmd implements the summarywidget command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/summary-widget/config"
	"github.com/kylesnowschwartz/summary-widget/internal/logging"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "summarywidget",
		Short: "Summary statistic widgets",
		Long: `summarywidget displays one summary statistic (count, sum, or mean)
of a list of numbers, optionally rounded to a fixed number of digits.

Examples:
  summarywidget render input.json           Render a host payload
  summarywidget render --values 1,2,3,4 -s mean -d 2
  echo '{"data":[1,2],"settings":{"statistic":"sum"}}' | summarywidget render
  summarywidget serve --listen :8080        Host widgets over HTTP/websocket
  summarywidget config init --format yaml   Print a starter config`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.json, .yaml, .toml)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")

	root.AddCommand(
		newRenderCmd(opts),
		newServeCmd(opts),
		newStatisticsCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and reports errors on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(logging.Config{
		Level:  o.logLevel,
		Format: o.logFormat,
		Output: cmd.ErrOrStderr(),
	})
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/summary-widget/config"
	"github.com/kylesnowschwartz/summary-widget/internal/term"
	"github.com/kylesnowschwartz/summary-widget/render"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

type renderOptions struct {
	statistic  string
	digits     int
	noRounding bool
	widget     string
	values     string
	noColor    bool
	border     bool
	label      string
	strict     bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a statistic to the terminal",
		Long: `Render reads a widget payload ({"data": [...], "settings": {...}}) from
file, or stdin when file is omitted or "-", and prints the statistic.

Settings precedence: built-in defaults < config defaults < config widget
(--widget) < payload settings < flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.statistic, "statistic", "s", "", "Statistic: count, sum, mean")
	f.IntVarP(&opts.digits, "digits", "d", 0, "Round to this many decimal places")
	f.BoolVar(&opts.noRounding, "no-rounding", false, "Show the value unrounded")
	f.StringVarP(&opts.widget, "widget", "w", "", "Named widget settings from the config file")
	f.StringVar(&opts.values, "values", "", "Comma separated values instead of a payload")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable color output")
	f.BoolVar(&opts.border, "border", false, "Draw a box around the value")
	f.StringVar(&opts.label, "label", "", "Label shown above the value")
	f.BoolVar(&opts.strict, "strict", false, "Fail on unknown statistics and the mean of no values")
	cmd.MarkFlagsMutuallyExclusive("digits", "no-rounding")

	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions, args []string) error {
	log := root.logger(cmd)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	req, err := opts.request(cmd, args)
	if err != nil {
		return err
	}

	// Payload and flag digits are checked before they reach the config
	// layer, where -1 means "no rounding".
	var payload *config.SettingsConfig
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			return err
		}
		payload = config.FromSettings(*req.Settings)
	}
	flags, err := opts.overlay(cmd)
	if err != nil {
		return err
	}
	settings := cfg.Resolve(opts.widget, payload, flags)

	if !stats.IsValidStatistic(settings.Statistic) && !opts.strict {
		log.Warn("unknown statistic, value will be 0", "statistic", string(settings.Statistic))
	}

	surface := term.NewSurface(cmd.OutOrStdout(), !opts.noColor)
	surface.Border = opts.border
	surface.Label = opts.label

	r := render.NewSummaryRenderer(surface,
		render.WithLogger(log),
		render.WithStrict(opts.strict))
	return r.Render(&stats.Input{Data: req.Data, Settings: settings})
}

// request returns the payload from --values, the file argument, or stdin.
func (o *renderOptions) request(cmd *cobra.Command, args []string) (*stats.Request, error) {
	if cmd.Flags().Changed("values") {
		if len(args) > 0 {
			return nil, errors.New("--values cannot be combined with a payload file")
		}
		data, err := stats.ParseValues(o.values)
		if err != nil {
			return nil, err
		}
		return &stats.Request{Data: data}, nil
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "opening payload")
		}
		defer f.Close()
		in = f
	}
	return stats.DecodeRequest(in)
}

// overlay returns the settings given explicitly on the command line.
func (o *renderOptions) overlay(cmd *cobra.Command) (*config.SettingsConfig, error) {
	flags := cmd.Flags()
	var sc config.SettingsConfig
	if flags.Changed("statistic") {
		s := o.statistic
		sc.Statistic = &s
	}
	if flags.Changed("digits") {
		d := o.digits
		if err := (stats.Settings{Digits: &d}).Validate(); err != nil {
			return nil, err
		}
		sc.Digits = &d
	}
	if o.noRounding {
		d := config.DigitsNone
		sc.Digits = &d
	}
	return &sc, nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/summary-widget/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create config files",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigResolveCmd(root))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Print a starter config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(config.StarterConfig(), config.Format(format))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, string(data))
			if len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatYAML), "Format: json, yaml, toml")
	return cmd
}

func newConfigResolveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [widget]",
		Short: "Print the settings a widget resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			s := cfg.Resolve(name)
			digits := "none"
			if s.Digits != nil {
				digits = fmt.Sprint(*s.Digits)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "statistic: %s\n", s.Statistic)
			fmt.Fprintf(out, "digits:    %s\n", digits)
			if err := s.Validate(); err != nil {
				fmt.Fprintf(out, "invalid:   %v\n", err)
			}
			return nil
		},
	}
}

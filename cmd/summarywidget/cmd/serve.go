package cmd

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/kylesnowschwartz/summary-widget/internal/host"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		listen string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host widgets over HTTP and websocket",
		Long: `Serve hosts widgets. Widgets named in the config file are created at
startup; more can be added with POST /widgets.

Routes:
  POST   /widgets               Create a widget
  GET    /widgets/{id}          Current text and settings
  DELETE /widgets/{id}          Remove a widget
  POST   /widgets/{id}/render   Render a payload
  POST   /widgets/{id}/resize   Resize
  GET    /widgets/{id}/ws       Stream text updates
  GET    /metrics               Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			srv := host.NewServer(
				host.WithLogger(log),
				host.WithRegistry(reg),
				host.WithDefaults(cfg.Resolve("")),
				host.WithStrict(strict),
			)

			if cfg != nil {
				names := make([]string, 0, len(cfg.Widgets))
				for name := range cfg.Widgets {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					if err := srv.AddWidget(name, cfg.Resolve(name)); err != nil {
						return err
					}
					log.Info("widget configured", "id", name)
				}
			}

			addr := cfg.ListenAddr()
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject unknown statistics and the mean of no values")
	return cmd
}

package main

import (
	"context"
	"os"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the configured machines over a JSON API, with Server-Sent Events per record and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		quiet, _ := cmd.Flags().GetBool("quiet")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		env, err := openEnv(cmd, func(o *cli.Options) { o.Registerer = reg })
		if err != nil {
			return err
		}
		defer env.Close()

		if !quiet && isTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return env.Serve(ctx, addr, reg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

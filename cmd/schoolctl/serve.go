package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schoolportal_backend/internals/configs"
	"schoolportal_backend/internals/server"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.LoadEnv()
			if migrate {
				cfg.AutoMigrate = true
			}
			log := configs.NewLogger(cfg)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, log)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migration before serving")
	return cmd
}

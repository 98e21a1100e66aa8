package main

import (
	"github.com/danmuck/shaderctl/internal/observability"
	"github.com/danmuck/shaderctl/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides [server].addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve compile requests over HTTP using one compiler worker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, cleanup, err := compilerSession(ctx, cfg, observability.MetricsHook{})
		if err != nil {
			return err
		}
		defer cleanup()
		return server.New(cfg.Session.ID, cfg.Server.Addr, s, cfg.Server.CorsOrigins).Run(ctx)
	},
}

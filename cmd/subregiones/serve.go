package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/engine/features"
	"github.com/rendis/subregiones/internal/engine/render"
	"github.com/rendis/subregiones/internal/server"
	"github.com/rendis/subregiones/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the subregions map as a web page",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := zap.L()
		indicator := features.IndicatorFunc(func(visible bool) {
			if visible {
				logger.Info("cargando subregiones")
			}
		})

		// A failed load is logged by the session; the page is still served.
		sess := session.New(newLoader(cfg), indicator, &render.Collector{}, logger)
		sess.Load(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(sess.Store(), server.Options{
			Port:        port,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

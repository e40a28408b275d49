// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubsum/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload, search, filter and export steps over HTTP",
	Long: `Serve starts a JSON API on server.addr. The server keeps no session state:
clients post the records each step works on. Prometheus metrics are exposed
on /metrics and a health probe on /-/health.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.EqualFold(appConfig.Log.Level, "debug") {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		metrics := server.NewMetrics()
		f := newFetcher(appConfig, loadedSecrets, appLog, metrics.FetchAttemptHook())
		srv := server.New(server.Options{
			Config:   appConfig.Server,
			Handlers: newHandlers(appConfig, f, appLog),
			Metrics:  metrics,
			Logger:   appLog,
			Version:  version,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the session handlers over HTTP with gin.
//
// Routes:
//
//	POST /api/v1/uploads           multipart field "file"
//	POST /api/v1/publications      {author, source, refresh, dataset}
//	POST /api/v1/filter            {records, start, end}
//	POST /api/v1/export/xlsx|docx|csl {records}
//	GET  /-/health
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pubsum/internal/logging"
	"github.com/pdiddy/pubsum/internal/session"
	"github.com/pdiddy/pubsum/pkg/types"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Config   types.ServerConfig
	Handlers *session.Handlers
	Metrics  *Metrics
	Logger   *slog.Logger
	Version  string
}

// Server is the HTTP shell.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	log        *slog.Logger
}

// New builds the router. The caller picks the gin mode.
func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	engine := gin.New()
	engine.Use(
		recovery(opts.Logger),
		requestID(opts.Logger),
		opts.Metrics.middleware(),
		requestLog(opts.Logger),
	)

	engine.GET("/-/health", health(opts.Version))
	engine.GET("/metrics", gin.WrapH(opts.Metrics.handler()))

	a := &api{h: opts.Handlers, metrics: opts.Metrics}
	v1 := engine.Group("/api/v1", maxBodySize(opts.Config.MaxUploadBytes), timeout(opts.Config.RequestTimeout))
	v1.POST("/uploads", a.upload)
	v1.POST("/publications", a.publications)
	v1.POST("/filter", a.filter)
	v1.POST("/export/xlsx", a.export("xlsx", opts.Handlers.ExportSpreadsheet))
	v1.POST("/export/docx", a.export("docx", opts.Handlers.ExportDocument))
	v1.POST("/export/csl", a.export("csl", opts.Handlers.ExportCSL))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              opts.Config.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: opts.Logger,
	}
}

// Handler returns the router for use with httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(sctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return <-errCh
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

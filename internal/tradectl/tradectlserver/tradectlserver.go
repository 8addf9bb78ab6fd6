// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tradectlserver serves the trade journal import API.
//
// Routes:
//
//	POST /api/importar-csv   Import an uploaded export and save its trades
//	GET  /api/trades         List saved trades
//	GET  /metrics            Prometheus metrics
package tradectlserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bufdev/tradectl/internal/pkg/brokercsv"
	"github.com/bufdev/tradectl/internal/tradectl/tradectlstore"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// Server is the import API server.
type Server interface {
	// Handler returns the HTTP handler serving all routes.
	Handler() http.Handler
	// Run listens on address until ctx is done, then shuts down gracefully.
	Run(ctx context.Context, address string) error
}

// ServerOption is an option for a new Server.
type ServerOption func(*server)

// ServerWithMaxBytes sets the maximum size of an uploaded export.
func ServerWithMaxBytes(maxBytes int64) ServerOption {
	return func(server *server) {
		server.maxBytes = maxBytes
	}
}

// ServerWithMaxRows sets the maximum number of data rows of an uploaded export.
func ServerWithMaxRows(maxRows int) ServerOption {
	return func(server *server) {
		server.maxRows = maxRows
	}
}

// NewServer returns a new Server that saves imported trades to store.
func NewServer(logger *slog.Logger, store tradectlstore.Store, options ...ServerOption) Server {
	server := &server{
		logger:   logger,
		store:    store,
		maxBytes: brokercsv.DefaultMaxBytes,
		maxRows:  brokercsv.DefaultMaxRows,
	}
	for _, option := range options {
		option(server)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	server.metrics = newMetrics(registry)
	server.engine = server.newEngine(registry)
	return server
}

// *** PRIVATE ***

type server struct {
	logger   *slog.Logger
	store    tradectlstore.Store
	maxBytes int64
	maxRows  int
	metrics  *metrics
	engine   *gin.Engine
}

func (s *server) Handler() http.Handler {
	return s.engine
}

func (s *server) Run(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening", "address", address)
		errC <- httpServer.ListenAndServe()
	}()
	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.InfoContext(ctx, "server stopped")
	return nil
}

func (s *server) newEngine(gatherer prometheus.Gatherer) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.logRequests())
	engine.POST("/api/importar-csv", s.handleImport)
	engine.GET("/api/trades", s.handleListTrades)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return engine
}

// logRequests logs every request at debug level, and failed requests at warn level.
func (s *server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		s.logger.Log(
			c.Request.Context(),
			level,
			"http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

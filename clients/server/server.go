// Package server exposes the memo plugin over HTTP: the generate command, a
// preview endpoint, and the live settings panel.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xob0t/memocard/pkg/memo"
)

//go:embed web/*
var webContent embed.FS

const shutdownTimeout = 5 * time.Second

// Server is the HTTP host of a memo plugin.
type Server struct {
	plugin *memo.Plugin
	logger *slog.Logger
	engine *gin.Engine
}

// New creates a server for an initialized plugin.
func New(p *memo.Plugin, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := fs.ReadFile(webContent, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{plugin: p, logger: logger, engine: engine}
	s.registerRoutes(engine)
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	return s, nil
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/memos", s.createMemo)
		api.POST("/preview", s.preview)
		api.GET("/style", s.style)

		api.GET("/settings", s.getSettings)
		api.GET("/settings/fields", s.getFields)
		api.PUT("/settings/:key", s.putSetting)
		api.POST("/settings/reset", s.resetSettings)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// OpenBrowser opens url in the desktop browser, best effort.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

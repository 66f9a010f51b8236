// Package httpapi exposes the refresh workflow over HTTP so the run can be
// triggered on demand (by a scheduler or by hand) instead of one-shot from
// the CLI.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toanujgoel/Naukri-Profile-Refresh/engine"
)

// Runner executes one complete refresh run and returns its terminal result.
type Runner interface {
	Run(ctx context.Context) engine.RunResult
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) engine.RunResult

func (f RunnerFunc) Run(ctx context.Context) engine.RunResult {
	return f(ctx)
}

// Server serializes runs: one account maps to one target session, so
// concurrent refresh requests would race each other inside the same profile.
type Server struct {
	runner Runner
	l      *slog.Logger
	mu     sync.Mutex
}

func NewServer(runner Runner, l *slog.Logger) *Server {
	return &Server{runner: runner, l: l}
}

// Register mounts the trigger endpoints on g.
func (s *Server) Register(g *gin.Engine) {
	g.POST("/refresh", s.handleRefresh)
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.runner.Run(c.Request.Context())
	if !result.Succeeded() {
		s.l.Error("Refresh run failed",
			"run_id", result.RunID,
			"step", result.Step,
			"error", result.Cause.Error())
		c.JSON(http.StatusBadGateway, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

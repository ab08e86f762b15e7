package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questmap/worldroute/internal/config"
	"github.com/questmap/worldroute/internal/snapshot"
)

// ReloadFunc produces a fresh snapshot, either by rebuilding from the
// dataset or by loading a stored artifact. Decoding verifies the content
// hash, so whatever this returns is safe to publish.
type ReloadFunc func(context.Context) (*snapshot.Snapshot, error)

// Server is the thin HTTP surface over the route engine. Handlers only
// translate JSON to engine types and back.
type Server struct {
	cfg    config.RouteServer
	handle *snapshot.Handle
	reload ReloadFunc
}

// New creates a server publishing snapshots through handle.
func New(cfg config.RouteServer, handle *snapshot.Handle, reload ReloadFunc) *Server {
	return &Server{cfg: cfg, handle: handle, reload: reload}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/route", s.handleRoute)
	r.GET("/status", s.handleStatus)
	r.POST("/reload", s.handleReload)
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("route server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	}
}

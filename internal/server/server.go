package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/game"
)

// Simulation is the running match as seen from the transport side. It is
// satisfied by *game.Runner.
type Simulation interface {
	Submit(cmd game.Command) error
	Latest() game.Snapshot
	Frames() (<-chan game.Snapshot, func())
}

// Server serves the renderer: REST endpoints plus one websocket feed per
// connected browser.
type Server struct {
	cfg    *config.Config
	sim    Simulation
	events bus.EventBus
	logger log.Log

	engine *gin.Engine
	hub    *Hub
	http   *http.Server
	sub    bus.Subscription

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool
}

// NewServer wires the routes. events may be nil, in which case gameplay
// events are not forwarded to websocket clients.
func NewServer(cfg *config.Config, sim Simulation, events bus.EventBus, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		sim:    sim,
		events: events,
		logger: logger.With(log.String("component", "server")),
	}
	s.hub = newHub(sim, cfg.Server, s.logger)
	s.engine = s.routes()

	s.logger.Info("Server created", log.String("listen_addr", cfg.Server.Addr))
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Hub() *Hub { return s.hub }

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.cfg.Server.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	if s.events != nil {
		sub, err := s.events.SubscribeAll(s.hub.forwardEvent)
		if err != nil {
			_ = ln.Close()
			atomic.StoreInt32(&s.running, 0)
			return err
		}
		s.sub = sub
	}

	s.http = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	return nil
}

// Stop drains HTTP requests and disconnects every websocket client.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")

	if s.sub != nil {
		_ = s.sub.Cancel()
	}
	s.hub.closeAll()
	err := s.http.Shutdown(ctx)

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and makes it unusable.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// Run serves until ctx is done, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

// IsRunning returns true if the server is running
func (s *Server) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

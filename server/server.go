package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quillhq/quill/config"

	"golang.org/x/sync/errgroup"
)

// Daemon is a background component whose lifecycle is tied to the server:
// started before the listener accepts traffic, stopped during graceful
// shutdown.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

// Server runs the HTTP listener and its daemons until a shutdown signal
// arrives, then drains everything within the configured graceful timeout.
type Server struct {
	cfg     config.Server
	handler http.Handler
	daemons []Daemon
	logger  *slog.Logger

	// replaced in tests
	exitFunc func(code int)
}

func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		exitFunc: os.Exit,
	}
}

// AddDaemon registers a daemon. Must be called before Run.
func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run blocks until shutdown completes, then exits the process.
func (s *Server) Run() {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
	}

	started := make([]Daemon, 0, len(s.daemons))
	for _, d := range s.daemons {
		s.logger.Info("starting daemon", "name", d.Name())
		if err := d.Start(); err != nil {
			s.logger.Error("daemon failed to start", "name", d.Name(), "error", err)
			s.stopDaemons(started)
			s.exitFunc(1)
			return
		}
		started = append(started, d)
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	select {
	case <-ctx.Done():
		s.logger.Info("received shutdown signal")
	case err := <-serverError:
		s.logger.Error("http server error, shutting down", "error", err)
	}
	stop()

	gracefulCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGracefulTimeout.Duration)
	defer cancel()

	g, _ := errgroup.WithContext(gracefulCtx)
	g.Go(func() error {
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
			return err
		}
		s.logger.Info("http server stopped")
		return nil
	})
	for _, d := range started {
		g.Go(func() error {
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("daemon shutdown error", "name", d.Name(), "error", err)
				return err
			}
			s.logger.Info("daemon stopped", "name", d.Name())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.exitFunc(1)
		return
	}

	s.logger.Info("shutdown complete")
	s.exitFunc(0)
}

func (s *Server) stopDaemons(daemons []Daemon) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGracefulTimeout.Duration)
	defer cancel()
	for _, d := range daemons {
		if err := d.Stop(ctx); err != nil {
			s.logger.Error("daemon cleanup error", "name", d.Name(), "error", err)
		}
	}
}

// Package gexpress wires a router.Router into an http.Server with the
// standard middleware stack and graceful shutdown, all configured from
// environment variables.
package gexpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gerrors "github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/middleware"
	"github.com/azizndao/gexpress/router"
	gslog "github.com/azizndao/gexpress/slog"
	"github.com/azizndao/gexpress/util"
	"github.com/azizndao/gexpress/validation"
)

type LocaleConfig = validation.LocaleConfig

var Locale = validation.Locale

// Config holds what cannot come from the environment.
type Config struct {
	// Locales adds validation message languages besides English
	Locales []LocaleConfig

	// Logger replaces the logger built from LOG_* variables
	Logger *gslog.Logger

	// Options replaces the router options loaded with router.LoadOptions
	Options *router.Options
}

// Server is an HTTP server dispatching to a router.Router
type Server struct {
	router          *router.Router
	httpServer      *http.Server
	logger          *gslog.Logger
	shutdownTimeout time.Duration
	Validator       *validation.Validator
}

// New creates a Server with configuration loaded from environment variables:
//   - HOST (string): default "localhost"
//   - PORT (int): default 8080
//   - READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT (duration): 10s, 10s, 120s
//   - SHUTDOWN_TIMEOUT (duration): grace period for in-flight requests (default: 30s)
//
// The router gets the net/http stack from middleware.Stack before any
// route, so it runs first for every request.
func New(config ...Config) *Server {
	cfg := util.FirstOrDefault(config, func() Config { return Config{} })

	host := util.GetEnv("HOST", "localhost")
	port := util.GetEnvInt("PORT", 8080)
	readTimeout := util.GetEnvDuration("READ_TIMEOUT", 10*time.Second)
	writeTimeout := util.GetEnvDuration("WRITE_TIMEOUT", 10*time.Second)
	idleTimeout := util.GetEnvDuration("IDLE_TIMEOUT", 120*time.Second)
	shutdownTimeout := util.GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	logger := cfg.Logger
	if logger == nil {
		logger = gslog.Create()
		slog.SetDefault(logger.Logger)
	}

	validator := validation.New(validation.Config{
		Logger:            logger,
		Locales:           cfg.Locales,
		UseJSONFieldNames: true,
		DefaultLocale:     "en",
	})

	opts := router.LoadOptions()
	if cfg.Options != nil {
		opts = *cfg.Options
	}
	r := router.New(logger, validator, opts)
	if stack := middleware.Stack(logger); len(stack) > 0 {
		r.UseHTTP(stack...)
	}

	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(host, fmt.Sprint(port)),
			Handler:      r,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		Validator:       validator,
	}
}

// Router returns the router to register routes and middleware on
func (s *Server) Router() *router.Router {
	return s.router
}

// Logger returns the configured logger
func (s *Server) Logger() *gslog.Logger {
	return s.logger
}

// Address returns the server address (host:port)
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// Serve accepts connections on ln until ctx is done, then shuts down,
// giving in-flight requests SHUTDOWN_TIMEOUT to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.InfoWithSource(ctx, 0, "Starting server", "addr", ln.Addr().String())
	return s.run(ctx, func() error { return s.httpServer.Serve(ln) })
}

// ServeTLS is Serve for HTTPS.
func (s *Server) ServeTLS(ctx context.Context, ln net.Listener, certFile, keyFile string) error {
	s.logger.InfoWithSource(ctx, 0, "Starting TLS server", "addr", ln.Addr().String())
	return s.run(ctx, func() error { return s.httpServer.ServeTLS(ln, certFile, keyFile) })
}

// ListenAndServe listens on Address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return gerrors.Errorf("server failed to start: %w", err)
	}
	return s.Serve(ctx, ln)
}

// ListenWithGracefulShutdown serves until SIGINT or SIGTERM, then shuts down
// gracefully. This is the recommended way to run the server in production.
func (s *Server) ListenWithGracefulShutdown() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx)
}

// ListenTLSWithGracefulShutdown is ListenWithGracefulShutdown for HTTPS.
func (s *Server) ListenTLSWithGracefulShutdown(certFile, keyFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return gerrors.Errorf("TLS server failed to start: %w", err)
	}
	return s.ServeTLS(ctx, ln, certFile, keyFile)
}

// Shutdown gracefully shuts down the server without interrupting active connections
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoWithSource(ctx, 0, "Shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		err = gerrors.Errorf("server shutdown failed: %w", err)
		s.logger.ErrorWithSource(ctx, 0, err)
		return err
	}

	s.logger.InfoWithSource(ctx, 0, "Server stopped")
	return nil
}

func (s *Server) run(ctx context.Context, serve func() error) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- serve()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return gerrors.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.InfoWithSource(ctx, 0, "Received shutdown signal", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return gerrors.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/snaplet/snaplet/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// App runs the mock backend HTTP server.
type App struct {
	config *Config
	logger logging.Logger
	server *Server
}

func NewApp(cfg *Config, logger logging.Logger) (*App, error) {
	s, err := NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{config: cfg, logger: logger, server: s}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return err
	}
	return app.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (app *App) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           app.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting mock API", "address", listener.Addr().String(), "prefix", APIPrefix)
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping mock API...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

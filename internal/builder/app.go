package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP intake service together with its shared dependencies
type App struct {
	server *http.Server
	core   *core
	logger *zap.Logger
}

// Run serves HTTP until ctx is cancelled or the listener fails, then drains
// in-flight turns and releases the database and Redis connections.
func (a *App) Run(ctx context.Context) error {
	defer a.core.close()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	a.logger.Info("application stopped")
	return nil
}

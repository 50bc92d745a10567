package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/saulo-duarte/chronos-goals/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Serve runs h on addr until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		config.WithContext(ctx).WithField("addr", addr).Info("HTTP server listening")
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

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	config.WithContext(ctx).Info("Shutting down HTTP server")
	return srv.Shutdown(sctx)
}

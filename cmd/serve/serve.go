// Package serve implements the command that runs the read-only JSON API.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/web/routes"
)

const shutdownTimeout = 30 * time.Second

// NewCmdServe creates the command running the HTTP API
func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Cabotage JSON API",
		Long:  "Serves projects, applications, releases and their status over a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.GetConfig()
			address := cfg.HTTPAddress()
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				address = listen
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServer(ctx, address)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on (defaults to http_host:http_port)")
	return cmd
}

// runServer serves the API on address until ctx is cancelled
func runServer(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           routes.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Web server starting", "address", "http://"+address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down web server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown failed: %w", err)
	}

	slog.Info("Web server stopped")
	return nil
}

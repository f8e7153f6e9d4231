package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/funnelviz/funnelviz/internal/server"
)

// shutdownTimeout bounds graceful shutdown after an interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the funnelviz HTTP API server",
		Long: `Run the funnelviz HTTP API server.

The server renders charts posted inline, stores chart documents, and
resolves pointer positions against solved geometry. Configuration comes
from a YAML file plus FUNNELVIZ_* environment overrides; flags win over
both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, port)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the server config file")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}

// runServe starts the server and blocks until the context is cancelled or
// the listener fails.
func (c *CLI) runServe(ctx context.Context, configPath string, port int) error {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	srv, err := server.New(ctx, *cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

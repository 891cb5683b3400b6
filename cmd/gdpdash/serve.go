package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		src    sourceFlags
		port   int
		reload time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the dashboard and HTTP API",
		Long: `Start the HTTP server. When a source or pipeline is given (or configured
through GDP_CONFIG_FILE or GDP_DATA_SOURCE) it is loaded before the server
starts listening, and re-run every --reload interval when one is set.
Otherwise the server waits for POST /api/run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return fmt.Errorf("invalid port %d", port)
				}
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("reload") {
				if reload < 0 {
					return fmt.Errorf("invalid reload interval %s", reload)
				}
				cfg.Data.ReloadInterval = reload
			}

			p, err := src.resolve(cfg, args)
			switch {
			case errors.Is(err, errNoSource):
				p = nil
			case err != nil:
				return err
			}

			var (
				opts []engine.Option
				c    *contract.Contract
			)
			if p != nil {
				opts, c = engineOptions(p), p.Contract
			}
			server := web.NewServer(a.newEngine(opts...), a.registry, c, cfg)

			if p == nil {
				slog.Info("no dataset configured, waiting for uploads")
			} else {
				runID, res, err := server.Load(cmd.Context(), p.Request)
				if err != nil {
					return err
				}
				slog.Info("dataset loaded",
					"run_id", runID,
					"source", res.Source,
					"rows", res.Metadata.RowCount,
				)
				if interval := cfg.Data.ReloadInterval; interval > 0 {
					go server.StartReloader(cmd.Context(), p.Request, interval)
				}
			}

			return serve(cmd.Context(), server, cfg.Server.ShutdownTimeout)
		},
	}

	src.register(cmd)
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides SERVER_PORT)")
	cmd.Flags().DurationVar(&reload, "reload", 0, "Re-run the source at this interval (overrides GDP_RELOAD_INTERVAL)")

	return cmd
}

// serve runs server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, server *web.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

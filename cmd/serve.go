package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/handlers"
	"github.com/cinememories/cinememories/internal/jobs"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port      string
		staticDir string
		seedDemo  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gallery API server",
		Long: `Starts the CineMemories API on the configured port.

The server restores the saved session, exposes the gallery, editing and
slideshow endpoints, and pushes change events over a websocket at
/api/events. Uploaded photos are categorized in the background.`,
		Example: `  # Start server on default port 8888
  cinememories serve

  # Start server on custom port and serve a built frontend
  cinememories serve --port 3000 --static ./dist

  # Fill an empty gallery with sample photos
  cinememories serve --demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("static") {
				cfg.Server.StaticDir = staticDir
			}
			if cmd.Flags().Changed("demo") {
				cfg.Server.SeedDemo = seedDemo
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			hub := events.NewHub()
			go hub.Run(ctx)

			a, err := newApp(ctx, cfg, hub)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.Server.SeedDemo {
				if n := a.store.SeedDemo(); n > 0 {
					slog.Info("Seeded demo photos", "count", n)
					if err := a.store.Save(ctx); err != nil {
						slog.Error("Unable to save seeded session", "err", err)
					}
				}
			}

			scheduler := jobs.NewScheduler(a.store, cfg.Jobs.PruneSchedule, cfg.PruneGrace())
			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()

			handler := handlers.New(handlers.Options{
				Store:              a.store,
				AI:                 a.gateway,
				Categorizer:        a.categorizer,
				Registry:           a.registry,
				Events:             hub,
				EventsHandler:      hub.ServeWS,
				BaseContext:        ctx,
				MaxUploadBytes:     cfg.MaxUploadBytes(),
				CategorizeOnUpload: cfg.Ingest.OnUpload,
				StaticDir:          cfg.Server.StaticDir,
			})

			// Set up routes
			mux := http.NewServeMux()
			handler.Register(mux)

			addr := cfg.Addr()
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			slog.Info("CineMemories API available", "addr", addr, "url", "http://localhost"+addr, "photos", a.store.Len())
			return serveUntilDone(cmd.Context(), server, cancel, time.Duration(cfg.Server.ShutdownTimeout)*time.Second, a.store.Save)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&staticDir, "static", "", "Directory of frontend assets to serve at /")
	cmd.Flags().BoolVar(&seedDemo, "demo", false, "Seed sample photos when the gallery is empty")

	return cmd
}

// serveUntilDone runs server until ctx ends or it fails. cancel is called on
// every return path; save runs only after a clean shutdown.
func serveUntilDone(ctx context.Context, server *http.Server, cancel context.CancelFunc, timeout time.Duration, save func(context.Context) error) error {
	defer cancel()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation (Ctrl+C) or server error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
		defer stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		cancel()
		if err := save(shutdownCtx); err != nil {
			slog.Error("Unable to save session on shutdown", "err", err)
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		slog.Error("Server failed", "err", err)
		return err
	}
}

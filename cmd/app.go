package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinememories/cinememories/internal/config"
	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/gateway"
	"github.com/cinememories/cinememories/internal/gemini"
	"github.com/cinememories/cinememories/internal/ingest"
	"github.com/cinememories/cinememories/internal/logging"
	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/storage"
	"github.com/cinememories/cinememories/internal/store"
	"github.com/cinememories/cinememories/internal/transcode"
)

// app is the wired object graph shared by every subcommand
type app struct {
	cfg         config.Config
	backend     storage.Backend
	registry    *media.Registry
	store       *store.Store
	gateway     *gateway.Gateway
	categorizer *ingest.Categorizer
}

// loadConfig reads the config file and installs the default logger
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

func newTransport(cfg config.Gemini) gemini.Transport {
	rest := gemini.NewClient(gemini.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		TimeoutSeconds: cfg.TimeoutSeconds,
	})
	switch cfg.Transport {
	case "sdk":
		return gemini.NewSDKClient(cfg.APIKey)
	case "rest":
		return rest
	default:
		return gemini.NewRouter(gemini.NewSDKClient(cfg.APIKey), rest)
	}
}

// newApp opens storage, restores the saved session and wires the gateway.
// publisher may be nil.
func newApp(ctx context.Context, cfg config.Config, publisher events.Publisher) (*app, error) {
	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	registry := media.NewRegistry()
	s := store.New(backend, registry)
	if err := s.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	gw := gateway.New(gateway.Config{
		APIKey:      cfg.Gemini.APIKey,
		TextModel:   cfg.Gemini.TextModel,
		ImageModel:  cfg.Gemini.ImageModel,
		SpeechModel: cfg.Gemini.SpeechModel,
	}, newTransport(cfg.Gemini), transcode.New(media.NewResolver(registry)), registry)
	if !gw.Enabled() {
		slog.Warn("GEMINI_API_KEY is not set; AI features will fall back to defaults")
	}

	opts := []ingest.Option{ingest.WithDelay(cfg.CategorizeDelay())}
	if publisher != nil {
		opts = append(opts, ingest.WithPublisher(publisher))
	}

	return &app{
		cfg:         cfg,
		backend:     backend,
		registry:    registry,
		store:       s,
		gateway:     gw,
		categorizer: ingest.New(gw, s, opts...),
	}, nil
}

func (a *app) Close() {
	a.categorizer.Wait()
	if err := a.backend.Close(); err != nil {
		slog.Error("Unable to close storage", "err", err)
	}
}

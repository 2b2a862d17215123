package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds the HTTP listener settings
type Server struct {
	Port            string `yaml:"port"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
	MaxUploadMB     int64  `yaml:"max_upload_mb"`
	StaticDir       string `yaml:"static_dir"`
	SeedDemo        bool   `yaml:"seed_demo"`
}

// Gemini holds the model gateway settings. Transport "auto" sends text-only
// calls through the genai SDK and image or speech output through REST.
type Gemini struct {
	APIKey         string `yaml:"api_key"`
	Transport      string `yaml:"transport"`
	BaseURL        string `yaml:"base_url"`
	TextModel      string `yaml:"text_model"`
	ImageModel     string `yaml:"image_model"`
	SpeechModel    string `yaml:"speech_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Storage selects the session persistence backend
type Storage struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// Ingest controls batch categorization
type Ingest struct {
	DelayMillis int  `yaml:"delay_ms"`
	OnUpload    bool `yaml:"categorize_on_upload"`
}

// Jobs schedules background housekeeping
type Jobs struct {
	PruneSchedule     string `yaml:"prune_schedule"`
	PruneGraceMinutes int    `yaml:"prune_grace_minutes"`
}

// Log configures the slog handler
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full application configuration
type Config struct {
	Server  Server  `yaml:"server"`
	Gemini  Gemini  `yaml:"gemini"`
	Storage Storage `yaml:"storage"`
	Ingest  Ingest  `yaml:"ingest"`
	Jobs    Jobs    `yaml:"jobs"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: Server{
			Port:            "8888",
			ShutdownTimeout: 5,
			MaxUploadMB:     10,
		},
		Gemini: Gemini{
			Transport:      "auto",
			TextModel:      "gemini-2.5-flash",
			ImageModel:     "gemini-2.5-flash-image",
			SpeechModel:    "gemini-2.5-flash-preview-tts",
			TimeoutSeconds: 120,
		},
		Storage: Storage{
			Backend: "file",
			Dir:     "data",
		},
		Ingest: Ingest{
			DelayMillis: 1000,
			OnUpload:    true,
		},
		Jobs: Jobs{
			PruneSchedule:     "@every 10m",
			PruneGraceMinutes: 30,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("CINEMEMORIES_GEMINI_TRANSPORT", &c.Gemini.Transport)
	str("CINEMEMORIES_GEMINI_BASE_URL", &c.Gemini.BaseURL)
	str("CINEMEMORIES_TEXT_MODEL", &c.Gemini.TextModel)
	str("CINEMEMORIES_IMAGE_MODEL", &c.Gemini.ImageModel)
	str("CINEMEMORIES_SPEECH_MODEL", &c.Gemini.SpeechModel)
	str("CINEMEMORIES_PORT", &c.Server.Port)
	str("CINEMEMORIES_STATIC_DIR", &c.Server.StaticDir)
	str("CINEMEMORIES_STORAGE_BACKEND", &c.Storage.Backend)
	str("CINEMEMORIES_STATE_DIR", &c.Storage.Dir)
	str("CINEMEMORIES_LOG_LEVEL", &c.Log.Level)
	str("CINEMEMORIES_LOG_FORMAT", &c.Log.Format)
	str("CINEMEMORIES_PRUNE_SCHEDULE", &c.Jobs.PruneSchedule)

	if err := num("CINEMEMORIES_CATEGORIZE_DELAY_MS", &c.Ingest.DelayMillis); err != nil {
		return err
	}
	return num("CINEMEMORIES_GEMINI_TIMEOUT_SECONDS", &c.Gemini.TimeoutSeconds)
}

func (c *Config) normalize() {
	c.Gemini.Transport = strings.ToLower(strings.TrimSpace(c.Gemini.Transport))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	switch c.Gemini.Transport {
	case "auto", "rest", "sdk":
	default:
		return fmt.Errorf("gemini.transport: unsupported value %q", c.Gemini.Transport)
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend: unsupported value %q", c.Storage.Backend)
	}
	if c.Storage.Dir == "" {
		return errors.New("storage.dir must be set")
	}
	if c.Ingest.DelayMillis < 0 {
		return fmt.Errorf("ingest.delay_ms must not be negative, got %d", c.Ingest.DelayMillis)
	}
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	switch c.Log.Format {
	case "", "text", "console", "json", "auto":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	if c.Jobs.PruneGraceMinutes < 0 {
		return fmt.Errorf("jobs.prune_grace_minutes must not be negative, got %d", c.Jobs.PruneGraceMinutes)
	}
	return nil
}

// CategorizeDelay is the pause between batch requests
func (c Config) CategorizeDelay() time.Duration {
	return time.Duration(c.Ingest.DelayMillis) * time.Millisecond
}

// PruneGrace is how long an unreferenced media handle survives
func (c Config) PruneGrace() time.Duration {
	return time.Duration(c.Jobs.PruneGraceMinutes) * time.Minute
}

// MaxUploadBytes is the per-file upload limit
func (c Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Addr is the listen address
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

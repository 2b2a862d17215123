package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/gateway"
	"github.com/cinememories/cinememories/internal/ingest"
	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
	"github.com/cinememories/cinememories/internal/store"
)

const defaultMaxUpload = 10 * 1024 * 1024

// AI is the model gateway as used by the HTTP layer
type AI interface {
	Enabled() bool
	Categorize(ctx context.Context, imageRef string) gateway.Result[models.Category]
	AutoNarrate(ctx context.Context, imageRef, tone string) gateway.Result[string]
	Transcribe(ctx context.Context, audioRef string) gateway.Result[string]
	Stylize(ctx context.Context, imageRef, style string) gateway.Result[string]
	RemoveObject(ctx context.Context, imageRef, description string) gateway.Result[string]
	RemoveObjectAtPoint(ctx context.Context, imageRef string, normX, normY float64) gateway.Result[string]
	SynthesizeSpeech(ctx context.Context, text string) gateway.Result[string]
	SynthesizeTrack(ctx context.Context, category string) gateway.Result[models.Track]
}

// Options wires a Handler. EventsHandler serves /api/events when set;
// background batches run under BaseContext.
type Options struct {
	Store              *store.Store
	AI                 AI
	Categorizer        *ingest.Categorizer
	Registry           *media.Registry
	Events             events.Publisher
	EventsHandler      http.HandlerFunc
	BaseContext        context.Context
	MaxUploadBytes     int64
	CategorizeOnUpload bool
	StaticDir          string
}

type Handler struct {
	store       *store.Store
	ai          AI
	categorizer *ingest.Categorizer
	registry    *media.Registry
	events      events.Publisher
	eventsWS    http.HandlerFunc
	baseCtx     context.Context
	maxUpload   int64
	autoIngest  bool
	staticDir   string
}

func New(opts Options) *Handler {
	h := &Handler{
		store:       opts.Store,
		ai:          opts.AI,
		categorizer: opts.Categorizer,
		registry:    opts.Registry,
		events:      opts.Events,
		eventsWS:    opts.EventsHandler,
		baseCtx:     opts.BaseContext,
		maxUpload:   opts.MaxUploadBytes,
		autoIngest:  opts.CategorizeOnUpload,
		staticDir:   opts.StaticDir,
	}
	if h.events == nil {
		h.events = events.Nop{}
	}
	if h.baseCtx == nil {
		h.baseCtx = context.Background()
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}
	if h.registry == nil {
		h.registry = media.NewRegistry()
	}
	return h
}

// Register adds every route to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/photos", h.HandleListPhotos)
	mux.HandleFunc("POST /api/photos", h.HandleUpload)
	mux.HandleFunc("POST /api/photos/reorder", h.HandleReorder)
	mux.HandleFunc("GET /api/photos/{id}", h.HandleGetPhoto)
	mux.HandleFunc("PUT /api/photos/{id}", h.HandleEditPhoto)
	mux.HandleFunc("DELETE /api/photos/{id}", h.HandleDeletePhoto)
	mux.HandleFunc("POST /api/photos/{id}/revert", h.HandleRevert)
	mux.HandleFunc("POST /api/photos/{id}/categorize", h.HandleCategorize)
	mux.HandleFunc("POST /api/photos/{id}/narrate", h.HandleNarrate)
	mux.HandleFunc("POST /api/photos/{id}/stylize", h.HandleStylize)
	mux.HandleFunc("POST /api/photos/{id}/remove-object", h.HandleRemoveObject)
	mux.HandleFunc("POST /api/photos/{id}/speech", h.HandleSpeech)
	mux.HandleFunc("POST /api/categorize", h.HandleCategorizeBatch)
	mux.HandleFunc("POST /api/transcribe", h.HandleTranscribe)
	mux.HandleFunc("GET /api/tracks", h.HandleListTracks)
	mux.HandleFunc("POST /api/tracks/generate", h.HandleGenerateTrack)
	mux.HandleFunc("POST /api/tracks/preview", h.HandlePreviewTrack)
	mux.HandleFunc("GET /api/categories", h.HandleListCategories)
	mux.HandleFunc("POST /api/categories", h.HandleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{name}", h.HandleDeleteCategory)
	mux.HandleFunc("GET /api/session", h.HandleGetSession)
	mux.HandleFunc("PUT /api/session", h.HandleUpdateSession)
	mux.HandleFunc("POST /api/demo", h.HandleSeedDemo)
	mux.HandleFunc("GET /media/{id}", h.HandleMedia)
	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
	if h.eventsWS != nil {
		mux.HandleFunc("GET /api/events", h.eventsWS)
	}
	if h.staticDir != "" {
		mux.HandleFunc("GET /", h.HandleStatic)
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSONStatus(w, code, map[string]string{"error": message})
}

// writeStoreError maps store sentinels to status codes
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateCategory):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrInvalidOrder),
		errors.Is(err, store.ErrInvalidView),
		errors.Is(err, store.ErrInvalidCategory),
		errors.Is(err, store.ErrBlankCategory),
		errors.Is(err, store.ErrBuiltinCategory):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload)).Decode(dst); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// persist saves the session after a mutation. Failures are logged; the
// in-memory change stands.
func (h *Handler) persist(ctx context.Context) {
	if err := h.store.Save(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

// Photo helpers
func (h *Handler) getPhotoOrError(w http.ResponseWriter, r *http.Request) (models.Photo, bool) {
	id := r.PathValue("id")
	photo, ok := h.store.Get(id)
	if !ok {
		h.writeError(w, "Photo not found", http.StatusNotFound)
		return models.Photo{}, false
	}
	return photo, true
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

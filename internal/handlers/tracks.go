package handlers

import (
	"net/http"
	"strings"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/gateway"
)

func (h *Handler) HandleListTracks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"tracks":     presentTracks(h.store.Tracks()),
		"selected":   MediaPath(h.store.Session().SelectedAudio),
		"previewing": MediaPath(h.store.Previewing()),
		"presets":    gateway.TrackCategories(),
	})
}

// HandleGenerateTrack synthesizes a theme and selects it for the slideshow
func (h *Handler) HandleGenerateTrack(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	var request struct {
		Category string `json:"category"`
	}
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &request) {
		return
	}

	result := h.ai.SynthesizeTrack(r.Context(), request.Category)
	resp := newAIResponse(result)
	if result.OK() {
		track := result.Value
		h.store.AddTrack(track)
		h.store.SelectAudio(track.URL)
		h.persist(r.Context())
		h.events.Publish(events.SessionChanged, "")

		track = presentTrack(track)
		resp.Track = &track
	}
	h.writeJSON(w, resp)
}

// HandlePreviewTrack toggles the single track preview
func (h *Handler) HandlePreviewTrack(w http.ResponseWriter, r *http.Request) {
	var request struct {
		URL string `json:"url"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}
	if strings.TrimSpace(request.URL) == "" {
		h.writeError(w, "url is required", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, presentPreview(h.store.TogglePreview(refFromPath(request.URL))))
}

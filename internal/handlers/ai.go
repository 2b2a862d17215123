package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/gateway"
	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
)

// aiResponse always carries the outcome; the client shows its generic alert
// for user-initiated actions when outcome is not "succeeded".
type aiResponse struct {
	Outcome  gateway.Outcome `json:"outcome"`
	Error    string          `json:"error,omitempty"`
	Photo    *models.Photo   `json:"photo,omitempty"`
	Text     string          `json:"text,omitempty"`
	AudioURL string          `json:"audioUrl,omitempty"`
	Track    *models.Track   `json:"track,omitempty"`
}

func newAIResponse[T any](result gateway.Result[T]) aiResponse {
	return aiResponse{Outcome: result.Outcome, Error: result.Reason()}
}

func (h *Handler) requireAI(w http.ResponseWriter) bool {
	if h.ai == nil {
		h.writeError(w, "AI gateway is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// applied finishes a successful photo update. A photo deleted while the
// request was in flight is left deleted and the response carries no photo.
func (h *Handler) applied(ctx context.Context, resp *aiResponse, photo models.Photo, ok bool) {
	if !ok {
		return
	}
	h.persist(ctx)
	h.events.Publish(events.PhotoUpdated, photo.ID)
	presented := presentPhoto(photo)
	resp.Photo = &presented
}

func (h *Handler) HandleCategorize(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}

	result := h.ai.Categorize(r.Context(), photo.URL)
	resp := newAIResponse(result)
	resp.Text = string(result.Value)
	if result.OK() {
		updated, ok := h.store.SetCategory(photo.ID, result.Value)
		h.applied(r.Context(), &resp, updated, ok)
	}
	h.writeJSON(w, resp)
}

func (h *Handler) HandleNarrate(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Tone string `json:"tone"`
	}
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &request) {
		return
	}

	result := h.ai.AutoNarrate(r.Context(), photo.URL, request.Tone)
	resp := newAIResponse(result)
	resp.Text = result.Value
	if result.OK() {
		updated, ok := h.store.SetNarration(photo.ID, result.Value)
		h.applied(r.Context(), &resp, updated, ok)
	}
	h.writeJSON(w, resp)
}

func (h *Handler) HandleStylize(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Style string `json:"style"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	result := h.ai.Stylize(r.Context(), photo.URL, request.Style)
	resp := newAIResponse(result)
	if result.OK() {
		updated, ok := h.store.ReplaceImage(photo.ID, result.Value)
		h.applied(r.Context(), &resp, updated, ok)
	}
	h.writeJSON(w, resp)
}

func (h *Handler) HandleRemoveObject(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Description string   `json:"description"`
		X           *float64 `json:"x"`
		Y           *float64 `json:"y"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	var result gateway.Result[string]
	switch {
	case request.X != nil && request.Y != nil:
		result = h.ai.RemoveObjectAtPoint(r.Context(), photo.URL, *request.X, *request.Y)
	case strings.TrimSpace(request.Description) != "":
		result = h.ai.RemoveObject(r.Context(), photo.URL, request.Description)
	default:
		h.writeError(w, "description or x/y is required", http.StatusBadRequest)
		return
	}

	resp := newAIResponse(result)
	if result.OK() {
		updated, ok := h.store.ReplaceImage(photo.ID, result.Value)
		h.applied(r.Context(), &resp, updated, ok)
	}
	h.writeJSON(w, resp)
}

func (h *Handler) HandleSpeech(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}
	var request struct {
		Text string `json:"text"`
	}
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &request) {
		return
	}
	text := request.Text
	if strings.TrimSpace(text) == "" {
		text = photo.Narration
	}

	result := h.ai.SynthesizeSpeech(r.Context(), text)
	resp := newAIResponse(result)
	if result.OK() {
		resp.AudioURL = MediaPath(result.Value)
		updated, ok := h.store.SetNarrationAudio(photo.ID, result.Value)
		if !ok {
			h.registry.Revoke(result.Value)
		}
		h.applied(r.Context(), &resp, updated, ok)
	}
	h.writeJSON(w, resp)
}

// HandleTranscribe accepts a multipart "audio" recording or JSON {url}
func (h *Handler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.requireAI(w) {
		return
	}

	var ref string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var request struct {
			URL string `json:"url"`
		}
		if !h.decodeJSON(w, r, &request) {
			return
		}
		ref = refFromPath(request.URL)
	} else {
		file, header, err := r.FormFile("audio")
		if err != nil {
			h.writeError(w, "Failed to read audio: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
		if err != nil {
			h.writeError(w, "Failed to read audio contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = media.Sniff(data)
		}
		ref = media.DataURL(mimeType, data)
	}
	if ref == "" {
		h.writeError(w, "audio is required", http.StatusBadRequest)
		return
	}

	result := h.ai.Transcribe(r.Context(), ref)
	resp := newAIResponse(result)
	resp.Text = result.Value
	h.writeJSON(w, resp)
}

// HandleCategorizeBatch queues background categorization. With no ids every
// photo is queued.
func (h *Handler) HandleCategorizeBatch(w http.ResponseWriter, r *http.Request) {
	if h.categorizer == nil {
		h.writeError(w, "Categorizer is not configured", http.StatusServiceUnavailable)
		return
	}
	var request struct {
		IDs []string `json:"ids"`
	}
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &request) {
		return
	}
	ids := request.IDs
	if len(ids) == 0 {
		for _, p := range h.store.List() {
			ids = append(ids, p.ID)
		}
	}

	h.categorizer.Start(h.baseCtx, ids)
	h.writeJSONStatus(w, http.StatusAccepted, map[string]any{"queued": len(ids)})
}

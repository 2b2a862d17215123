package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/models"
)

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	// Handle file upload
	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		URL      string          `json:"url"`
		Name     string          `json:"name"`
		Category models.Category `json:"category"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	request.URL = strings.TrimSpace(request.URL)
	if request.URL == "" {
		h.writeError(w, "url is required", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(request.URL, "http://") && !strings.HasPrefix(request.URL, "https://") && !strings.HasPrefix(request.URL, "data:image/") {
		h.writeError(w, "url must be http(s) or an image data url", http.StatusBadRequest)
		return
	}
	if request.Category != "" && !h.categoryKnown(request.Category) {
		h.writeError(w, "Unknown category: "+string(request.Category), http.StatusBadRequest)
		return
	}

	added := h.store.Add(models.Photo{URL: request.URL, Name: request.Name, Category: request.Category})
	h.afterUpload(r, added, request.Category == "")

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"photos":  presentPhotos(added),
		"message": "Successfully added image from URL",
		"source":  "url",
	})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	photos := make([]models.Photo, 0, len(headers))
	for _, header := range headers {
		photo, err := h.readUploadedImage(header)
		if err != nil {
			h.writeError(w, fmt.Sprintf("%s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		photos = append(photos, photo)
	}

	added := h.store.Add(photos...)
	h.afterUpload(r, added, true)

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"photos":  presentPhotos(added),
		"message": fmt.Sprintf("Successfully uploaded %d image(s)", len(added)),
	})
}

func (h *Handler) readUploadedImage(header *multipart.FileHeader) (models.Photo, error) {
	file, err := header.Open()
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to read file contents: %w", err)
	}
	if int64(len(fileData)) >= h.maxUpload {
		return models.Photo{}, fmt.Errorf("file too large (max %dMB)", h.maxUpload>>20)
	}

	result, err := processImageFile(fileData)
	if err != nil {
		return models.Photo{}, err
	}
	slog.Info("Image received", "filename", header.Filename, "mime", result.MIMEType, "width", result.Width, "height", result.Height)

	return models.Photo{
		Name: models.NameFromFilename(header.Filename),
		URL:  result.DataURL,
	}, nil
}

// afterUpload persists, announces and optionally queues categorization
func (h *Handler) afterUpload(r *http.Request, added []models.Photo, categorize bool) {
	h.persist(r.Context())
	for _, p := range added {
		h.events.Publish(events.PhotosAdded, p.ID)
	}
	if !categorize || !h.autoIngest || h.categorizer == nil || h.ai == nil || !h.ai.Enabled() {
		return
	}
	ids := make([]string, len(added))
	for i, p := range added {
		ids[i] = p.ID
	}
	h.categorizer.Start(h.baseCtx, ids)
}

func (h *Handler) categoryKnown(c models.Category) bool {
	for _, known := range h.store.Categories() {
		if strings.EqualFold(string(known), string(c)) {
			return true
		}
	}
	return false
}

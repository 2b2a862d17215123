package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cinememories/cinememories/internal/media"
)

// HandleMedia serves the bytes behind a registry handle
func (h *Handler) HandleMedia(w http.ResponseWriter, r *http.Request) {
	blob, ok := h.registry.Get(media.RefPrefix + r.PathValue("id"))
	if !ok {
		http.Error(w, "Media not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", blob.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(blob.Data)
}

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, filepath.FromSlash(path)))
}

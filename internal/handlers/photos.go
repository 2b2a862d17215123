package handlers

import (
	"net/http"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/store"
)

func (h *Handler) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos := h.store.List()
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := photos[:0]
		for _, p := range photos {
			if string(p.Category) == category {
				filtered = append(filtered, p)
			}
		}
		photos = filtered
	}
	h.writeJSON(w, presentPhotos(photos))
}

func (h *Handler) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.getPhotoOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, presentPhoto(photo))
}

func (h *Handler) HandleEditPhoto(w http.ResponseWriter, r *http.Request) {
	var edit store.Edit
	if !h.decodeJSON(w, r, &edit) {
		return
	}
	photo, err := h.store.ApplyEdit(r.PathValue("id"), edit)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.persist(r.Context())
	h.events.Publish(events.PhotoUpdated, photo.ID)
	h.writeJSON(w, presentPhoto(photo))
}

func (h *Handler) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.Delete(id) {
		h.writeError(w, "Photo not found", http.StatusNotFound)
		return
	}
	h.persist(r.Context())
	h.events.Publish(events.PhotoDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRevert(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.store.RevertImage(r.PathValue("id"))
	if !ok {
		h.writeError(w, "Photo not found", http.StatusNotFound)
		return
	}
	h.persist(r.Context())
	h.events.Publish(events.PhotoUpdated, photo.ID)
	h.writeJSON(w, presentPhoto(photo))
}

// HandleReorder accepts either a full id permutation or a single drag move
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var request struct {
		IDs  []string `json:"ids"`
		From *int     `json:"from"`
		To   *int     `json:"to"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	var err error
	switch {
	case len(request.IDs) > 0:
		err = h.store.Reorder(request.IDs)
	case request.From != nil && request.To != nil:
		err = h.store.Move(*request.From, *request.To)
	default:
		h.writeError(w, "ids or from/to is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.persist(r.Context())
	h.events.Publish(events.PhotosReordered, "")
	h.writeJSON(w, presentPhotos(h.store.List()))
}

package handlers

import (
	"net/http"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/models"
)

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, presentSession(h.store.Session()))
}

// HandleUpdateSession changes view and playback state. Nil fields are left
// unchanged.
func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CurrentView   *models.View `json:"currentView"`
		EditingID     *string      `json:"editingPhotoId"`
		SelectedAudio *string      `json:"selectedAudio"`
		Volume        *int         `json:"volume"`
		IsPlaying     *bool        `json:"isPlaying"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	if request.CurrentView != nil {
		if err := h.store.SetView(*request.CurrentView); err != nil {
			h.writeStoreError(w, err)
			return
		}
	}
	if request.EditingID != nil {
		if err := h.store.SetEditing(*request.EditingID); err != nil {
			h.writeStoreError(w, err)
			return
		}
	}
	if request.SelectedAudio != nil {
		h.store.SelectAudio(refFromPath(*request.SelectedAudio))
	}
	if request.Volume != nil {
		h.store.SetVolume(*request.Volume)
	}
	if request.IsPlaying != nil {
		h.store.SetPlaying(*request.IsPlaying)
	}

	h.persist(r.Context())
	h.events.Publish(events.SessionChanged, "")
	h.writeJSON(w, presentSession(h.store.Session()))
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"categories": h.store.Categories(),
		"custom":     h.store.CustomCategories(),
	})
}

func (h *Handler) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}
	category, err := h.store.AddCategory(request.Name)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.persist(r.Context())
	h.events.Publish(events.CategoriesChanged, "")
	h.writeJSONStatus(w, http.StatusCreated, map[string]any{"category": category})
}

// HandleDeleteCategory removes a custom category; its photos become Uncategorized
func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	reassigned, err := h.store.DeleteCategory(r.PathValue("name"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.persist(r.Context())
	h.events.Publish(events.CategoriesChanged, "")
	h.writeJSON(w, map[string]any{"reassigned": reassigned})
}

func (h *Handler) HandleSeedDemo(w http.ResponseWriter, r *http.Request) {
	added := h.store.SeedDemo()
	if added > 0 {
		h.persist(r.Context())
		h.events.Publish(events.PhotosAdded, "")
	}
	h.writeJSON(w, map[string]any{"added": added})
}

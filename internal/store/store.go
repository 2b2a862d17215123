package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
	"github.com/cinememories/cinememories/internal/storage"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidOrder      = errors.New("invalid photo order")
	ErrInvalidView       = errors.New("invalid view")
	ErrInvalidCategory   = errors.New("unknown category")
	ErrBlankCategory     = errors.New("category name is empty")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrBuiltinCategory   = errors.New("built-in categories cannot be changed")
)

// Store is the gallery's session state. Mutations only touch memory; Save
// and Load are the explicit persistence boundary.
type Store struct {
	state    models.SessionState
	custom   []models.Category
	tracks   []models.Track
	preview  string
	backend  storage.Backend
	registry *media.Registry
	mu       sync.RWMutex
	// saveMu orders snapshots with their writes
	saveMu   sync.Mutex
}

// New creates an empty store. backend and registry may be nil.
func New(backend storage.Backend, registry *media.Registry) *Store {
	return &Store{
		state:    models.NewSessionState(),
		custom:   []models.Category{},
		backend:  backend,
		registry: registry,
	}
}

// Add appends photos to the end of the gallery. Missing ids are generated,
// OriginalURL is fixed to the first URL and filters default to neutral.
func (s *Store) Add(photos ...models.Photo) []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if p.ID == "" || s.indexOf(p.ID) >= 0 {
			p.ID = uuid.NewString()
		}
		if p.OriginalURL == "" {
			p.OriginalURL = p.URL
		}
		if p.Filters == (models.FilterParameters{}) {
			p.Filters = models.DefaultFilters()
		}
		if p.Category == "" {
			p.Category = models.CategoryUncategorized
		}
		if p.Name == "" {
			p.Name = "Untitled"
		}
		p.Rotation = models.NormalizeRotation(p.Rotation)
		s.state.Photos = append(s.state.Photos, p)
		added = append(added, p)
	}
	return added
}

// Get returns a copy of the photo with id
func (s *Store) Get(id string) (models.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Photo{}, false
	}
	return s.state.Photos[idx], true
}

// List returns the photos in gallery order
func (s *Store) List() []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Photos)
}

// Len returns the number of photos
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Photos)
}

// Update applies fn to the photo with id. A missing id is a silent no-op
// and returns false, so results arriving for deleted photos are dropped.
// OriginalURL and ID cannot be changed; media handles replaced by fn are revoked.
func (s *Store) Update(id string, fn func(p *models.Photo)) (models.Photo, bool) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		slog.Debug("Dropping update for missing photo", "photo_id", id)
		return models.Photo{}, false
	}

	before := s.state.Photos[idx]
	updated := before
	fn(&updated)
	updated.ID = before.ID
	updated.OriginalURL = before.OriginalURL
	updated.Rotation = models.NormalizeRotation(updated.Rotation)
	s.state.Photos[idx] = updated
	s.mu.Unlock()

	if before.URL != updated.URL && before.URL != before.OriginalURL {
		s.revoke(before.URL)
	}
	if before.NarrationAudioURL != updated.NarrationAudioURL {
		s.revoke(before.NarrationAudioURL)
	}
	return updated, true
}

// ReplaceImage sets the displayed image after a stylize or removal
func (s *Store) ReplaceImage(id, url string) (models.Photo, bool) {
	return s.Update(id, func(p *models.Photo) { p.URL = url })
}

// RevertImage restores the uploaded image
func (s *Store) RevertImage(id string) (models.Photo, bool) {
	return s.Update(id, func(p *models.Photo) { p.URL = p.OriginalURL })
}

// SetNarration replaces the narration text
func (s *Store) SetNarration(id, text string) (models.Photo, bool) {
	return s.Update(id, func(p *models.Photo) { p.Narration = text })
}

// SetNarrationAudio replaces the narration audio reference
func (s *Store) SetNarrationAudio(id, ref string) (models.Photo, bool) {
	return s.Update(id, func(p *models.Photo) { p.NarrationAudioURL = ref })
}

// SetCategory relabels a photo
func (s *Store) SetCategory(id string, category models.Category) (models.Photo, bool) {
	return s.Update(id, func(p *models.Photo) { p.Category = category })
}

// Edit is an editor save. Nil fields are left unchanged.
type Edit struct {
	Name              *string                  `json:"name,omitempty"`
	URL               *string                  `json:"url,omitempty"`
	Category          *models.Category         `json:"category,omitempty"`
	Narration         *string                  `json:"narration,omitempty"`
	NarrationAudioURL *string                  `json:"narrationAudioUrl,omitempty"`
	Filters           *models.FilterParameters `json:"filters,omitempty"`
	Rotation          *int                     `json:"rotation,omitempty"`
}

// ApplyEdit saves editor changes to a photo
func (s *Store) ApplyEdit(id string, edit Edit) (models.Photo, error) {
	if edit.Category != nil && !s.knownCategory(*edit.Category) {
		return models.Photo{}, fmt.Errorf("%w: %s", ErrInvalidCategory, *edit.Category)
	}
	photo, ok := s.Update(id, func(p *models.Photo) {
		if edit.Name != nil {
			p.Name = strings.TrimSpace(*edit.Name)
		}
		if edit.URL != nil && *edit.URL != "" {
			p.URL = *edit.URL
		}
		if edit.Category != nil {
			p.Category = *edit.Category
		}
		if edit.Narration != nil {
			p.Narration = *edit.Narration
		}
		if edit.NarrationAudioURL != nil {
			p.NarrationAudioURL = *edit.NarrationAudioURL
		}
		if edit.Filters != nil {
			p.Filters = *edit.Filters
		}
		if edit.Rotation != nil {
			p.Rotation = *edit.Rotation
		}
	})
	if !ok {
		return models.Photo{}, ErrNotFound
	}
	return photo, nil
}

// Delete removes a photo and releases the media handles it owned
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.state.Photos[idx]
	s.state.Photos = slices.Delete(s.state.Photos, idx, idx+1)
	if s.state.EditingID == id {
		s.state.EditingID = ""
		s.state.CurrentView = models.ViewGallery
	}
	s.mu.Unlock()

	s.revoke(removed.URL)
	s.revoke(removed.OriginalURL)
	s.revoke(removed.NarrationAudioURL)
	return true
}

// Move drags the photo at index from to index to
func (s *Store) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Photos)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d photos", ErrInvalidOrder, from, to, n)
	}
	p := s.state.Photos[from]
	s.state.Photos = slices.Delete(s.state.Photos, from, from+1)
	s.state.Photos = slices.Insert(s.state.Photos, to, p)
	return nil
}

// Reorder sets the gallery order. ids must be a permutation of the current ids.
func (s *Store) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) != len(s.state.Photos) {
		return fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidOrder, len(s.state.Photos), len(ids))
	}

	byID := make(map[string]models.Photo, len(s.state.Photos))
	for _, p := range s.state.Photos {
		byID[p.ID] = p
	}
	ordered := make([]models.Photo, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated id %s", ErrInvalidOrder, id)
		}
		delete(byID, id)
		ordered = append(ordered, p)
	}
	s.state.Photos = ordered
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.state.Photos, func(p models.Photo) bool { return p.ID == id })
}

func (s *Store) revoke(ref string) {
	if s.registry != nil && ref != "" {
		s.registry.Revoke(ref)
	}
}

type persistedCategories []models.Category

// Save writes the session and category blobs to the backend
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	stateJSON, err := json.Marshal(s.state)
	if err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	categoriesJSON, err := json.Marshal(persistedCategories(s.custom))
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := s.backend.Put(ctx, storage.StateKey, stateJSON); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	if err := s.backend.Put(ctx, storage.CategoriesKey, categoriesJSON); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// Load replaces the in-memory state with the persisted blobs and resets the
// transient view fields. Missing blobs leave the defaults in place.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	state := models.NewSessionState()
	if data, ok, err := s.backend.Get(ctx, storage.StateKey); err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	} else if ok {
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to decode session state: %w", err)
		}
	}
	state.ResetTransient()

	custom := []models.Category{}
	if data, ok, err := s.backend.Get(ctx, storage.CategoriesKey); err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	} else if ok {
		if err := json.Unmarshal(data, &custom); err != nil {
			return fmt.Errorf("failed to decode categories: %w", err)
		}
	}

	dropped := s.dropDeadRefs(&state)
	if dropped > 0 {
		slog.Warn("Cleared media handles that did not survive reload", "count", dropped)
	}

	s.mu.Lock()
	s.state = state
	s.custom = custom
	s.preview = ""
	s.mu.Unlock()

	slog.Info("Session loaded", "photos", len(state.Photos), "custom_categories", len(custom))
	return nil
}

// dropDeadRefs clears ephemeral handles that are no longer live. They are
// only valid for the process that created them.
func (s *Store) dropDeadRefs(state *models.SessionState) int {
	live := func(ref string) bool {
		if !media.IsRef(ref) {
			return true
		}
		if s.registry == nil {
			return false
		}
		_, ok := s.registry.Get(ref)
		return ok
	}

	dropped := 0
	for i := range state.Photos {
		p := &state.Photos[i]
		if !live(p.NarrationAudioURL) {
			p.NarrationAudioURL = ""
			dropped++
		}
		if !live(p.URL) {
			p.URL = p.OriginalURL
			dropped++
		}
	}
	if !live(state.SelectedAudio) {
		state.SelectedAudio = models.DefaultTracks()[0].URL
		dropped++
	}
	return dropped
}

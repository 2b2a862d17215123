package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cinememories/cinememories/internal/models"
)

// Categories returns the built-in labels followed by user-defined ones
func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.Builtins(), s.custom...)
}

// CustomCategories returns only user-defined labels
func (s *Store) CustomCategories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.custom)
}

// AddCategory registers a user-defined label
func (s *Store) AddCategory(name string) (models.Category, error) {
	category := models.Category(strings.TrimSpace(name))
	if category == "" {
		return "", ErrBlankCategory
	}
	if category.IsBuiltin() {
		return "", fmt.Errorf("%w: %s", ErrDuplicateCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customIndex(category) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateCategory, category)
	}
	s.custom = append(s.custom, category)
	return category, nil
}

// DeleteCategory removes a user-defined label and moves every photo that had
// it to Uncategorized. It returns how many photos were reassigned.
func (s *Store) DeleteCategory(name string) (int, error) {
	category := models.Category(strings.TrimSpace(name))
	if category.IsBuiltin() {
		return 0, fmt.Errorf("%w: %s", ErrBuiltinCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.customIndex(category)
	if idx < 0 {
		return 0, fmt.Errorf("%w: category %s", ErrNotFound, category)
	}
	s.custom = slices.Delete(s.custom, idx, idx+1)

	reassigned := 0
	for i := range s.state.Photos {
		if strings.EqualFold(string(s.state.Photos[i].Category), string(category)) {
			s.state.Photos[i].Category = models.CategoryUncategorized
			reassigned++
		}
	}
	return reassigned, nil
}

func (s *Store) customIndex(category models.Category) int {
	return slices.IndexFunc(s.custom, func(c models.Category) bool {
		return strings.EqualFold(string(c), string(category))
	})
}

func (s *Store) knownCategory(category models.Category) bool {
	if category.IsBuiltin() {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customIndex(category) >= 0
}

// Session returns a copy of the full session state
func (s *Store) Session() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.Photos = slices.Clone(s.state.Photos)
	return state
}

// SetView switches the current screen
func (s *Store) SetView(view models.View) error {
	if !view.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidView, view)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentView = view
	if view != models.ViewEditor {
		s.state.EditingID = ""
	}
	if view != models.ViewSlideshow {
		s.state.IsPlaying = false
	}
	return nil
}

// SetEditing opens the editor on a photo. An empty id closes the editor.
func (s *Store) SetEditing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.state.EditingID = ""
		s.state.CurrentView = models.ViewGallery
		return nil
	}
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: photo %s", ErrNotFound, id)
	}
	s.state.EditingID = id
	s.state.CurrentView = models.ViewEditor
	return nil
}

// SelectAudio chooses the slideshow background track
func (s *Store) SelectAudio(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedAudio = ref
}

// AddTrack keeps a generated track for this process. Generated tracks are
// media handles and are not persisted.
func (s *Store) AddTrack(track models.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, track)
}

// Tracks returns the built-in tracks followed by generated ones
func (s *Store) Tracks() []models.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.DefaultTracks(), s.tracks...)
}

// SetVolume stores the playback volume clamped to 0..100
func (s *Store) SetVolume(volume int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Volume = models.ClampVolume(volume)
	return s.state.Volume
}

// SetPlaying toggles slideshow playback. Starting playback switches to the
// slideshow view.
func (s *Store) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsPlaying = playing
	if playing {
		s.state.CurrentView = models.ViewSlideshow
	}
}

// PreviewChange describes a preview toggle: what started and what stopped
type PreviewChange struct {
	Playing string `json:"playing"`
	Stopped string `json:"stopped,omitempty"`
}

// TogglePreview owns the single track preview. Starting a new preview stops
// the one in progress; toggling the playing track stops it.
func (s *Store) TogglePreview(trackURL string) PreviewChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.preview
	if previous == trackURL {
		s.preview = ""
		return PreviewChange{Stopped: previous}
	}
	s.preview = trackURL
	return PreviewChange{Playing: trackURL, Stopped: previous}
}

// Previewing returns the track currently being previewed
func (s *Store) Previewing() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

var demoPhotos = []models.Photo{
	{Name: "Mountain Sunrise", URL: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=1200", Category: models.CategoryLandscapes, Narration: "The first light touched the peaks."},
	{Name: "Golden Retriever", URL: "https://images.unsplash.com/photo-1552053831-71594a27632d?w=1200", Category: models.CategoryAnimals, Narration: "Our loyal companion on every adventure."},
	{Name: "City Lights", URL: "https://images.unsplash.com/photo-1477959858617-67f85cf4f1df?w=1200", Category: models.CategoryOutdoor, Narration: "The city never sleeps."},
	{Name: "Family Dinner", URL: "https://images.unsplash.com/photo-1511895426328-dc8714191300?w=1200", Category: models.CategoryPeople, Narration: "Together around the table."},
}

// SeedDemo fills an empty gallery with sample photos. It returns how many
// were added.
func (s *Store) SeedDemo() int {
	if s.Len() > 0 {
		return 0
	}
	return len(s.Add(demoPhotos...))
}

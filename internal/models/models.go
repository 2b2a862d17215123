package models

import (
	"fmt"
	"strings"
)

// View selects which screen the presentation layer shows
type View string

const (
	ViewGallery   View = "gallery"
	ViewEditor    View = "editor"
	ViewSlideshow View = "slideshow"
)

// Valid reports whether v is a known view
func (v View) Valid() bool {
	switch v {
	case ViewGallery, ViewEditor, ViewSlideshow:
		return true
	}
	return false
}

// Photo is one image in the gallery
type Photo struct {
	ID                string           `json:"id"`
	URL               string           `json:"url"`
	OriginalURL       string           `json:"originalUrl"`
	Name              string           `json:"name"`
	Category          Category         `json:"category"`
	Narration         string           `json:"narration"`
	NarrationAudioURL string           `json:"narrationAudioUrl,omitempty"`
	Filters           FilterParameters `json:"filters"`
	Rotation          int              `json:"rotation"`
}

// Stylized reports whether the displayed image differs from the upload
func (p Photo) Stylized() bool {
	return p.URL != p.OriginalURL
}

// FilterParameters are rendering-time adjustments. They are never baked into
// the encoded image bytes.
type FilterParameters struct {
	Brightness float64 `json:"brightness"` // 0..200, 100 is neutral
	Contrast   float64 `json:"contrast"`   // 0..200, 100 is neutral
	Saturation float64 `json:"saturation"` // 0..200, 100 is neutral
	Blur       float64 `json:"blur"`       // 0..10 px
	Sepia      float64 `json:"sepia"`      // 0..100
	Grayscale  float64 `json:"grayscale"`  // 0..100
}

// DefaultFilters returns the neutral filter set
func DefaultFilters() FilterParameters {
	return FilterParameters{
		Brightness: 100,
		Contrast:   100,
		Saturation: 100,
	}
}

// CSS renders the composed filter chain the slideshow applies
func (f FilterParameters) CSS() string {
	parts := []string{
		fmt.Sprintf("brightness(%g%%)", f.Brightness),
		fmt.Sprintf("contrast(%g%%)", f.Contrast),
		fmt.Sprintf("saturate(%g%%)", f.Saturation),
		fmt.Sprintf("blur(%gpx)", f.Blur),
		fmt.Sprintf("sepia(%g%%)", f.Sepia),
		fmt.Sprintf("grayscale(%g%%)", f.Grayscale),
	}
	return strings.Join(parts, " ")
}

// NormalizeRotation wraps any angle onto 0, 90, 180 or 270
func NormalizeRotation(deg int) int {
	deg = ((deg % 360) + 360) % 360
	return (deg / 90) * 90
}

// Rotate turns the photo clockwise by deg degrees
func (p *Photo) Rotate(deg int) {
	p.Rotation = NormalizeRotation(p.Rotation + deg)
}

// Track is a playable background or narration audio reference
type Track struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Tag         string `json:"tag"`
	AIGenerated bool   `json:"isAiGenerated,omitempty"`
}

// SessionState is everything the gallery persists between visits.
// CurrentView, EditingID and IsPlaying are transient and reset on load.
type SessionState struct {
	Photos        []Photo `json:"photos"`
	CurrentView   View    `json:"currentView"`
	EditingID     string  `json:"editingPhotoId,omitempty"`
	SelectedAudio string  `json:"selectedAudio"`
	Volume        int     `json:"volume"`
	IsPlaying     bool    `json:"isPlaying"`
}

// DefaultVolume is the starting playback volume
const DefaultVolume = 50

// NewSessionState returns an empty session with default view state
func NewSessionState() SessionState {
	return SessionState{
		Photos:        []Photo{},
		CurrentView:   ViewGallery,
		SelectedAudio: DefaultTracks()[0].URL,
		Volume:        DefaultVolume,
	}
}

// ResetTransient clears the fields that never survive a reload
func (s *SessionState) ResetTransient() {
	s.CurrentView = ViewGallery
	s.EditingID = ""
	s.IsPlaying = false
	if s.Photos == nil {
		s.Photos = []Photo{}
	}
	s.Volume = ClampVolume(s.Volume)
}

// ClampVolume bounds v to 0..100
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package handlers

import (
	"strings"

	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
	"github.com/cinememories/cinememories/internal/store"
)

const mediaRoute = "/media/"

// MediaPath is where a registry handle is served. Other references pass
// through unchanged.
func MediaPath(ref string) string {
	if !media.IsRef(ref) {
		return ref
	}
	return mediaRoute + media.RefID(ref)
}

// refFromPath undoes MediaPath for references sent back by a client
func refFromPath(s string) string {
	s = strings.TrimSpace(s)
	if id, ok := strings.CutPrefix(s, mediaRoute); ok && id != "" {
		return media.RefPrefix + id
	}
	return s
}

// Every photo, session and track leaving the API goes through these so
// clients only ever see playable paths.

func presentPhoto(p models.Photo) models.Photo {
	p.URL = MediaPath(p.URL)
	p.OriginalURL = MediaPath(p.OriginalURL)
	p.NarrationAudioURL = MediaPath(p.NarrationAudioURL)
	return p
}

func presentPhotos(photos []models.Photo) []models.Photo {
	out := make([]models.Photo, len(photos))
	for i, p := range photos {
		out[i] = presentPhoto(p)
	}
	return out
}

func presentSession(state models.SessionState) models.SessionState {
	state.Photos = presentPhotos(state.Photos)
	state.SelectedAudio = MediaPath(state.SelectedAudio)
	return state
}

func presentTrack(t models.Track) models.Track {
	t.URL = MediaPath(t.URL)
	return t
}

func presentTracks(tracks []models.Track) []models.Track {
	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		out[i] = presentTrack(t)
	}
	return out
}

func presentPreview(change store.PreviewChange) store.PreviewChange {
	change.Playing = MediaPath(change.Playing)
	change.Stopped = MediaPath(change.Stopped)
	return change
}

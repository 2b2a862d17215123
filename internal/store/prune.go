package store

import (
	"log/slog"
	"time"
)

// PruneMedia revokes registry handles older than grace that nothing in the
// session points at. It returns the number revoked.
func (s *Store) PruneMedia(grace time.Duration) int {
	if s.registry == nil {
		return 0
	}

	s.mu.RLock()
	live := make(map[string]bool, len(s.state.Photos)*2+len(s.tracks)+2)
	for _, p := range s.state.Photos {
		live[p.URL] = true
		live[p.NarrationAudioURL] = true
	}
	for _, t := range s.tracks {
		live[t.URL] = true
	}
	live[s.state.SelectedAudio] = true
	live[s.preview] = true
	s.mu.RUnlock()

	pruned := 0
	for _, ref := range s.registry.Stale(grace) {
		if live[ref] {
			continue
		}
		s.registry.Revoke(ref)
		pruned++
	}
	if pruned > 0 {
		slog.Info("Pruned orphaned media handles", "count", pruned, "remaining", s.registry.Len())
	}
	return pruned
}

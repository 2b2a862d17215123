package media

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RefPrefix marks references that point into a Registry
const RefPrefix = "media:"

// Blob is an in-memory media payload held by the registry
type Blob struct {
	Data    []byte
	MIME    string
	Created time.Time
}

// Registry owns ephemeral media handles. A handle lives until it is revoked
// or the process exits; handles are never written to persistent state as bytes.
type Registry struct {
	blobs map[string]Blob
	mu    sync.RWMutex
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		blobs: make(map[string]Blob),
	}
}

// IsRef reports whether ref is a registry handle
func IsRef(ref string) bool {
	return strings.HasPrefix(ref, RefPrefix)
}

// RefID strips the handle prefix
func RefID(ref string) string {
	return strings.TrimPrefix(ref, RefPrefix)
}

// Create stores data and returns its handle
func (r *Registry) Create(data []byte, mime string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.blobs[id] = Blob{Data: data, MIME: mime, Created: time.Now()}
	r.mu.Unlock()
	slog.Debug("Media handle created", "ref", RefPrefix+id, "mime", mime, "bytes", len(data))
	return RefPrefix + id
}

// Get returns the blob behind ref
func (r *Registry) Get(ref string) (Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.blobs[RefID(ref)]
	return blob, ok
}

// Revoke releases ref. Revoking anything that is not a live handle is a no-op.
func (r *Registry) Revoke(ref string) {
	if !IsRef(ref) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[RefID(ref)]; ok {
		delete(r.blobs, RefID(ref))
		slog.Debug("Media handle revoked", "ref", ref)
	}
}

// Len returns the number of live handles
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// Stale returns handles created more than age ago
func (r *Registry) Stale(age time.Duration) []string {
	cutoff := time.Now().Add(-age)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var refs []string
	for id, blob := range r.blobs {
		if blob.Created.Before(cutoff) {
			refs = append(refs, RefPrefix+id)
		}
	}
	return refs
}

package storage

import (
	"context"
	"fmt"
	"strings"
)

// Keys under which the two persisted blobs live
const (
	StateKey      = "cinememories_state"
	CategoriesKey = "cinememories_categories"
)

// Backend persists opaque JSON blobs by key
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the backend named by kind ("file" or "sqlite") rooted at dir
func Open(kind, dir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "file":
		return NewFileBackend(dir)
	case "sqlite":
		return OpenSQLite(dir)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", kind)
	}
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestBackends(t *testing.T) {
	for _, kind := range []string{"file", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			backend, err := Open(kind, dir)
			if err != nil {
				t.Fatalf("Open(%s) returned error: %v", kind, err)
			}
			defer backend.Close()
			ctx := context.Background()

			if _, ok, err := backend.Get(ctx, StateKey); err != nil || ok {
				t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := backend.Put(ctx, StateKey, []byte(`{"photos":[]}`)); err != nil {
				t.Fatalf("Put returned error: %v", err)
			}
			if err := backend.Put(ctx, StateKey, []byte(`{"photos":[1]}`)); err != nil {
				t.Fatalf("second Put returned error: %v", err)
			}
			if err := backend.Put(ctx, CategoriesKey, []byte(`["Trips"]`)); err != nil {
				t.Fatalf("Put returned error: %v", err)
			}

			data, ok, err := backend.Get(ctx, StateKey)
			if err != nil || !ok {
				t.Fatalf("Expected stored key, got ok=%v err=%v", ok, err)
			}
			if string(data) != `{"photos":[1]}` {
				t.Errorf("Expected latest value, got %s", data)
			}
			data, _, _ = backend.Get(ctx, CategoriesKey)
			if string(data) != `["Trips"]` {
				t.Errorf("Expected categories blob, got %s", data)
			}
		})
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend returned error: %v", err)
	}
	defer backend.Close()

	if err := backend.Put(context.Background(), StateKey, []byte("{}")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("Expected no temp files, got %v", matches)
	}
	if _, err := os.Stat(filepath.Join(dir, StateKey+".json")); err != nil {
		t.Errorf("Expected state file, got %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}

package media

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDataURLRoundTrip(t *testing.T) {
	raw := DataURL("image/png", []byte{1, 2, 3})
	mime, data, err := ParseDataURL(raw)
	if err != nil {
		t.Fatalf("ParseDataURL returned error: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("Expected image/png, got %s", mime)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Unexpected data %v", data)
	}

	if _, _, err := ParseDataURL("https://example.com/a.jpg"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("Expected ErrNotDataURL, got %v", err)
	}
	if _, _, err := ParseDataURL("data:text/plain,hello"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("Expected ErrNotDataURL for non-base64 url, got %v", err)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	ref := r.Create([]byte("wav"), "audio/wav")
	if !IsRef(ref) {
		t.Fatalf("Expected media ref, got %s", ref)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 live handle, got %d", r.Len())
	}

	blob, ok := r.Get(ref)
	if !ok || string(blob.Data) != "wav" || blob.MIME != "audio/wav" {
		t.Errorf("Unexpected blob %+v ok=%v", blob, ok)
	}

	r.Revoke(ref)
	r.Revoke(ref)
	r.Revoke("https://example.com/track.mp3")
	if _, ok := r.Get(ref); ok {
		t.Error("Expected revoked handle to be gone")
	}
	if r.Len() != 0 {
		t.Errorf("Expected 0 live handles, got %d", r.Len())
	}
}

func TestResolverFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	registry := NewRegistry()
	ref := registry.Create([]byte("abc"), "audio/wav")
	resolver := NewResolver(registry)
	ctx := context.Background()

	data, mime, err := resolver.Fetch(ctx, server.URL+"/ok.jpg")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if mime != "image/jpeg" || len(data) != 5 {
		t.Errorf("Expected sniffed jpeg of 5 bytes, got %s/%d", mime, len(data))
	}

	if _, _, err := resolver.Fetch(ctx, server.URL+"/missing.jpg"); err == nil {
		t.Error("Expected error for HTTP 404")
	}

	data, mime, err = resolver.Fetch(ctx, ref)
	if err != nil || string(data) != "abc" || mime != "audio/wav" {
		t.Errorf("Unexpected registry fetch: %q %s %v", data, mime, err)
	}
	if _, _, err := resolver.Fetch(ctx, "/media/"+RefID(ref)); err != nil {
		t.Errorf("Expected /media/ path to resolve, got %v", err)
	}

	registry.Revoke(ref)
	if _, _, err := resolver.Fetch(ctx, ref); !errors.Is(err, ErrRevoked) {
		t.Errorf("Expected ErrRevoked, got %v", err)
	}
	if _, _, err := resolver.Fetch(ctx, "blob:xyz"); !errors.Is(err, ErrUnsupportedRef) {
		t.Errorf("Expected ErrUnsupportedRef, got %v", err)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{name: "jpeg", head: []byte{0xff, 0xd8, 0xff, 0xdb}, want: "image/jpeg"},
		{name: "png", head: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, want: "image/png"},
		{name: "wav", head: []byte("RIFF\x00\x00\x00\x00WAVEfmt "), want: "audio/wav"},
		{name: "webp", head: []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), want: "image/webp"},
		{name: "ogg", head: []byte("OggS\x00"), want: "audio/ogg"},
		{name: "unknown", head: []byte("hello"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.head); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

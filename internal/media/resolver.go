package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxFetchBytes bounds remote downloads
const maxFetchBytes = 32 * 1024 * 1024

var (
	ErrRevoked        = errors.New("media handle is not live")
	ErrUnsupportedRef = errors.New("unsupported media reference")
)

// Resolver turns media references into bytes. It understands data URLs,
// registry handles and http(s) URLs.
type Resolver struct {
	Registry   *Registry
	HTTPClient *http.Client
}

// NewResolver creates a resolver backed by registry
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		Registry: registry,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns the bytes and MIME type behind ref. The MIME type may be
// empty when neither the source nor the payload identify it.
func (r *Resolver) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		mime, data, err := ParseDataURL(ref)
		if err != nil {
			return nil, "", err
		}
		if mime == "" {
			mime = Sniff(data)
		}
		return data, mime, nil
	case IsRef(ref) || strings.HasPrefix(ref, "/media/"):
		if r.Registry == nil {
			return nil, "", ErrRevoked
		}
		blob, ok := r.Registry.Get(RefPrefix + strings.TrimPrefix(RefID(ref), "/media/"))
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrRevoked, ref)
		}
		return blob.Data, blob.MIME, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return r.download(ctx, ref)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedRef, truncate(ref, 32))
	}
}

func (r *Resolver) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch media: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media data: %w", err)
	}

	mime := MimeTypeFromHTTP(resp.Header)
	if mime == "" || mime == "application/octet-stream" {
		mime = Sniff(data)
	}
	return data, mime, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

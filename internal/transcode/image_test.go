package transcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	data, ok := f[ref]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return data, "image/png", nil
}

func pngOfSize(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.RGBA{R: 10, G: 200, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodePayload(t *testing.T, p *Payload) image.Image {
	t.Helper()
	data, err := p.Bytes()
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	return img
}

func TestEncodeImageForTransportBoundsLargeImages(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{name: "landscape", w: 2048, h: 1536},
		{name: "portrait", w: 1200, h: 3000},
		{name: "square", w: 1500, h: 1500},
		{name: "one edge over", w: 1025, h: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := New(fakeFetcher{"img": pngOfSize(t, tt.w, tt.h)})
			payload, err := tc.EncodeImageForTransport(context.Background(), "img")
			if err != nil {
				t.Fatalf("EncodeImageForTransport returned error: %v", err)
			}
			if payload.MIMEType != "image/jpeg" {
				t.Errorf("Expected image/jpeg, got %s", payload.MIMEType)
			}

			b := decodePayload(t, payload).Bounds()
			if max(b.Dx(), b.Dy()) > MaxTransportEdge {
				t.Errorf("Expected longer edge <= %d, got %dx%d", MaxTransportEdge, b.Dx(), b.Dy())
			}

			wantShort := float64(min(tt.w, tt.h)) * float64(MaxTransportEdge) / float64(max(tt.w, tt.h))
			gotShort := float64(min(b.Dx(), b.Dy()))
			if math.Abs(wantShort-gotShort) > 1 {
				t.Errorf("Expected short edge ~%.1f, got %.0f", wantShort, gotShort)
			}
		})
	}
}

func TestEncodeImageForTransportKeepsSmallImages(t *testing.T) {
	tc := New(fakeFetcher{"img": pngOfSize(t, 640, 480)})
	payload, err := tc.EncodeImageForTransport(context.Background(), "img")
	if err != nil {
		t.Fatalf("EncodeImageForTransport returned error: %v", err)
	}
	b := decodePayload(t, payload).Bounds()
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("Expected 640x480, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeImageForTransportFailures(t *testing.T) {
	tc := New(fakeFetcher{"broken": []byte("not an image")})

	if _, err := tc.EncodeImageForTransport(context.Background(), "missing"); err == nil {
		t.Error("Expected fetch error for missing ref")
	}
	if _, err := tc.EncodeImageForTransport(context.Background(), "broken"); err == nil {
		t.Error("Expected decode error for corrupt image")
	}
}

func TestAnnotateImageAtPointCenter(t *testing.T) {
	tc := New(fakeFetcher{"img": pngOfSize(t, 1000, 1000)})
	ann, err := tc.AnnotateImageAtPoint(context.Background(), "img", 0.5, 0.5)
	if err != nil {
		t.Fatalf("AnnotateImageAtPoint returned error: %v", err)
	}

	if ann.CenterX != 500 || ann.CenterY != 500 {
		t.Errorf("Expected marker at (500,500), got (%d,%d)", ann.CenterX, ann.CenterY)
	}
	if ann.Radius < 20 {
		t.Errorf("Expected radius >= 20, got %d", ann.Radius)
	}

	img := decodePayload(t, &ann.Payload)
	r, g, b, _ := img.At(500, 500).RGBA()
	if r>>8 < 200 || g>>8 > 60 || b>>8 > 60 {
		t.Errorf("Expected red marker at center, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = img.At(500+ann.Radius+20, 500).RGBA()
	if r>>8 > 100 {
		t.Errorf("Expected no marker outside radius, got red=%d", r>>8)
	}
}

func TestAnnotateImageAtPointClampsCoordinates(t *testing.T) {
	tc := New(fakeFetcher{"img": pngOfSize(t, 200, 100)})
	ann, err := tc.AnnotateImageAtPoint(context.Background(), "img", -0.5, 3)
	if err != nil {
		t.Fatalf("AnnotateImageAtPoint returned error: %v", err)
	}
	if ann.CenterX != 0 || ann.CenterY != 100 {
		t.Errorf("Expected clamped center (0,100), got (%d,%d)", ann.CenterX, ann.CenterY)
	}
	if ann.Radius != 20 {
		t.Errorf("Expected minimum radius 20, got %d", ann.Radius)
	}
}

func TestMarkerRadius(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{w: 100, h: 100, want: 20},
		{w: 1000, h: 1000, want: 50},
		{w: 1024, h: 600, want: 30},
	}
	for _, tt := range tests {
		if got := MarkerRadius(tt.w, tt.h); got != tt.want {
			t.Errorf("MarkerRadius(%d,%d): expected %d, got %d", tt.w, tt.h, tt.want, got)
		}
	}
}

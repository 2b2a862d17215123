package transcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/nfnt/resize"
)

const (
	// MaxTransportEdge bounds both edges of images sent to the model
	MaxTransportEdge = 1024

	transportQuality  = 80
	annotationQuality = 85

	minMarkerRadius   = 20
	markerRadiusRatio = 0.05
)

// MarkerColor fills the removal-target marker
var MarkerColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Payload is media encoded for transport: base64 bytes and their MIME type
type Payload struct {
	Data     string
	MIMEType string
	Width    int
	Height   int
}

// Bytes decodes the base64 payload
func (p *Payload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// Annotation is an image with the removal marker drawn on it
type Annotation struct {
	Payload
	CenterX int
	CenterY int
	Radius  int
}

// Fetcher resolves a media reference into bytes
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, string, error)
}

// Transcoder produces the encodings the model gateway sends and receives
type Transcoder struct {
	fetcher Fetcher
}

// New creates a transcoder that loads references through fetcher
func New(fetcher Fetcher) *Transcoder {
	return &Transcoder{fetcher: fetcher}
}

// EncodeImageForTransport loads ref, bounds it to MaxTransportEdge and
// re-encodes it as JPEG. An error means the caller should skip the operation.
func (t *Transcoder) EncodeImageForTransport(ctx context.Context, ref string) (*Payload, error) {
	img, err := t.loadBounded(ctx, ref)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img, transportQuality)
}

// AnnotateImageAtPoint draws a filled marker at the normalized coordinate so
// the model can locate the object to remove. Coordinates are clamped to [0,1].
func (t *Transcoder) AnnotateImageAtPoint(ctx context.Context, ref string, normX, normY float64) (*Annotation, error) {
	img, err := t.loadBounded(ctx, ref)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	cx := int(math.Round(clamp01(normX) * float64(w)))
	cy := int(math.Round(clamp01(normY) * float64(h)))
	radius := MarkerRadius(w, h)
	fillCircle(canvas, cx, cy, radius, MarkerColor)

	payload, err := encodeJPEG(canvas, annotationQuality)
	if err != nil {
		return nil, err
	}
	return &Annotation{
		Payload: *payload,
		CenterX: cx,
		CenterY: cy,
		Radius:  radius,
	}, nil
}

// MarkerRadius is max(20, 5% of the shorter edge)
func MarkerRadius(w, h int) int {
	r := int(math.Round(markerRadiusRatio * float64(min(w, h))))
	return max(minMarkerRadius, r)
}

// BoundedSize returns the dimensions after fitting w x h inside
// MaxTransportEdge while keeping the aspect ratio.
func BoundedSize(w, h int) (int, int) {
	if w <= MaxTransportEdge && h <= MaxTransportEdge {
		return w, h
	}
	scale := float64(MaxTransportEdge) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return min(nw, MaxTransportEdge), min(nh, MaxTransportEdge)
}

func (t *Transcoder) loadBounded(ctx context.Context, ref string) (image.Image, error) {
	data, _, err := t.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	nw, nh := BoundedSize(bounds.Dx(), bounds.Dy())
	if nw == bounds.Dx() && nh == bounds.Dy() {
		return img, nil
	}
	return resize.Resize(uint(nw), uint(nh), img, resize.Lanczos3), nil
}

func encodeJPEG(img image.Image, quality int) (*Payload, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return &Payload{
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		MIMEType: "image/jpeg",
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}

func fillCircle(dst *image.RGBA, cx, cy, r int, c color.RGBA) {
	b := dst.Bounds()
	for y := max(b.Min.Y, cy-r); y <= min(b.Max.Y-1, cy+r); y++ {
		for x := max(b.Min.X, cx-r); x <= min(b.Max.X-1, cx+r); x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

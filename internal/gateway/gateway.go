package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strconv"
	"strings"

	"github.com/cinememories/cinememories/internal/gemini"
	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
	"github.com/cinememories/cinememories/internal/transcode"
)

var (
	errEmptyText  = errors.New("model returned no text")
	errNoImage    = errors.New("model returned no image")
	errNoAudio    = errors.New("model returned no audio")
	errEmptyInput = errors.New("nothing to send")
	errOffList    = errors.New("model answered outside the category list")
)

// Config names the credential and the models each capability uses
type Config struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	SpeechModel string
}

// Gateway packages transcoded media with task instructions, calls the model
// once and unpacks a typed value or a safe default.
type Gateway struct {
	cfg        Config
	transport  gemini.Transport
	transcoder *transcode.Transcoder
	registry   *media.Registry
}

// New creates a gateway
func New(cfg Config, transport gemini.Transport, transcoder *transcode.Transcoder, registry *media.Registry) *Gateway {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	return &Gateway{
		cfg:        cfg,
		transport:  transport,
		transcoder: transcoder,
		registry:   registry,
	}
}

// Enabled reports whether a credential is configured
func (g *Gateway) Enabled() bool {
	return strings.TrimSpace(g.cfg.APIKey) != ""
}

// Categorize picks one of the fixed category labels for the image
func (g *Gateway) Categorize(ctx context.Context, imageRef string) Result[models.Category] {
	const op = "categorize"
	def := models.CategoryUncategorized
	if !g.Enabled() {
		return fallback(def, SkippedNoCredential, nil)
	}

	payload, err := g.transcoder.EncodeImageForTransport(ctx, imageRef)
	if err != nil {
		return skipped(op, def, err)
	}

	resp, err := g.transport.Generate(ctx, gemini.Request{
		Model:       g.cfg.TextModel,
		Parts:       []gemini.Part{gemini.MediaPart(payload.MIMEType, payload.Data), gemini.TextPart(categorizePrompt())},
		Temperature: temperature(0.1),
	})
	if err != nil {
		return failure(op, def, err)
	}

	category, ok := models.MatchAIChoice(resp.Text())
	if !ok {
		return failure(op, def, fmt.Errorf("%w: %q", errOffList, resp.Text()))
	}
	return success(category)
}

// AutoNarrate writes a short caption in the given tone
func (g *Gateway) AutoNarrate(ctx context.Context, imageRef, tone string) Result[string] {
	const op = "narrate"
	def := NarrationPlaceholder
	if !g.Enabled() {
		return fallback(def, SkippedNoCredential, nil)
	}

	payload, err := g.transcoder.EncodeImageForTransport(ctx, imageRef)
	if err != nil {
		return skipped(op, def, err)
	}

	resp, err := g.transport.Generate(ctx, gemini.Request{
		Model:       g.cfg.TextModel,
		Parts:       []gemini.Part{gemini.MediaPart(payload.MIMEType, payload.Data), gemini.TextPart(narratePrompt(tone))},
		Temperature: temperature(0.9),
	})
	if err != nil {
		return failure(op, def, err)
	}

	text := strings.Trim(resp.Text(), "\"")
	if text == "" {
		return failure(op, def, errEmptyText)
	}
	return success(text)
}

// Transcribe turns a voice recording into text
func (g *Gateway) Transcribe(ctx context.Context, audioRef string) Result[string] {
	const op = "transcribe"
	if !g.Enabled() {
		return fallback("", SkippedNoCredential, nil)
	}

	payload, err := g.transcoder.EncodeAudioForTransport(ctx, audioRef)
	if err != nil {
		return skipped(op, "", err)
	}

	resp, err := g.transport.Generate(ctx, gemini.Request{
		Model: g.cfg.TextModel,
		Parts: []gemini.Part{gemini.MediaPart(payload.MIMEType, payload.Data), gemini.TextPart(transcribePrompt)},
	})
	if err != nil {
		return failure(op, "", err)
	}
	return success(resp.Text())
}

// Stylize redraws the image in the named style. The value is a data URL.
func (g *Gateway) Stylize(ctx context.Context, imageRef, style string) Result[string] {
	const op = "stylize"
	if !g.Enabled() {
		return fallback("", SkippedNoCredential, nil)
	}
	if strings.TrimSpace(style) == "" {
		return skipped(op, "", errEmptyInput)
	}

	payload, err := g.transcoder.EncodeImageForTransport(ctx, imageRef)
	if err != nil {
		return skipped(op, "", err)
	}
	return g.editImage(ctx, op, payload, stylizePrompt(style))
}

// RemoveObject erases the described object from the image
func (g *Gateway) RemoveObject(ctx context.Context, imageRef, description string) Result[string] {
	const op = "remove_object"
	if !g.Enabled() {
		return fallback("", SkippedNoCredential, nil)
	}
	if strings.TrimSpace(description) == "" {
		return skipped(op, "", errEmptyInput)
	}

	payload, err := g.transcoder.EncodeImageForTransport(ctx, imageRef)
	if err != nil {
		return skipped(op, "", err)
	}
	return g.editImage(ctx, op, payload, removeObjectPrompt(description))
}

// RemoveObjectAtPoint erases whatever sits at the normalized click position
func (g *Gateway) RemoveObjectAtPoint(ctx context.Context, imageRef string, normX, normY float64) Result[string] {
	const op = "remove_object_at_point"
	if !g.Enabled() {
		return fallback("", SkippedNoCredential, nil)
	}

	annotated, err := g.transcoder.AnnotateImageAtPoint(ctx, imageRef, normX, normY)
	if err != nil {
		return skipped(op, "", err)
	}
	slog.Debug("Annotated removal target", "x", annotated.CenterX, "y", annotated.CenterY, "radius", annotated.Radius)
	return g.editImage(ctx, op, &annotated.Payload, removeMarkedObjectPrompt)
}

// SynthesizeSpeech reads the narration aloud. The value is a media handle.
func (g *Gateway) SynthesizeSpeech(ctx context.Context, text string) Result[string] {
	const op = "speech"
	if !g.Enabled() {
		return fallback("", SkippedNoCredential, nil)
	}
	if strings.TrimSpace(text) == "" {
		return skipped(op, "", errEmptyInput)
	}

	ref, err := g.speak(ctx, speechPrompt(text), "Kore")
	if err != nil {
		return failure(op, "", err)
	}
	return success(ref)
}

// SynthesizeTrack generates a background theme for the given preset
func (g *Gateway) SynthesizeTrack(ctx context.Context, category string) Result[models.Track] {
	const op = "track"
	if !g.Enabled() {
		return fallback(models.Track{}, SkippedNoCredential, nil)
	}

	preset := PresetFor(category)
	ref, err := g.speak(ctx, preset.Prompt, preset.Voice)
	if err != nil {
		return failure(op, models.Track{}, err)
	}
	return success(models.Track{
		Name:        fmt.Sprintf("AI %s Theme", preset.Category),
		URL:         ref,
		Tag:         preset.Tag,
		AIGenerated: true,
	})
}

func (g *Gateway) editImage(ctx context.Context, op string, payload *transcode.Payload, prompt string) Result[string] {
	resp, err := g.transport.Generate(ctx, gemini.Request{
		Model:              g.cfg.ImageModel,
		Parts:              []gemini.Part{gemini.MediaPart(payload.MIMEType, payload.Data), gemini.TextPart(prompt)},
		ResponseModalities: []string{gemini.ModalityImage, gemini.ModalityText},
	})
	if err != nil {
		return failure(op, "", err)
	}

	inline := resp.InlineData()
	if inline == nil {
		return failure(op, "", fmt.Errorf("%w (text: %q)", errNoImage, resp.Text()))
	}
	mimeType := inline.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return success(media.DataURLFromBase64(mimeType, inline.Data))
}

func (g *Gateway) speak(ctx context.Context, prompt, voice string) (string, error) {
	resp, err := g.transport.Generate(ctx, gemini.Request{
		Model:              g.cfg.SpeechModel,
		Parts:              []gemini.Part{gemini.TextPart(prompt)},
		ResponseModalities: []string{gemini.ModalityAudio},
		Voice:              voice,
	})
	if err != nil {
		return "", err
	}

	inline := resp.InlineData()
	if inline == nil {
		return "", errNoAudio
	}
	wav, err := transcode.DecodeSynthesizedAudio(inline.Data, sampleRateFromMIME(inline.MIMEType))
	if err != nil {
		return "", err
	}
	return g.registry.Create(wav, "audio/wav"), nil
}

// sampleRateFromMIME reads the rate parameter of e.g. "audio/L16;codec=pcm;rate=24000"
func sampleRateFromMIME(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return transcode.DefaultSampleRate
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return transcode.DefaultSampleRate
	}
	return rate
}

func failure[T any](op string, def T, err error) Result[T] {
	if gemini.IsQuotaExceeded(err) {
		slog.Warn("Gemini quota exceeded", "op", op)
		return fallback(def, QuotaExceeded, err)
	}
	slog.Error("Gemini request failed", "op", op, "error", err)
	return fallback(def, Failed, err)
}

func skipped[T any](op string, def T, err error) Result[T] {
	slog.Warn("Skipping gemini request", "op", op, "error", err)
	return fallback(def, SkippedInput, err)
}

func temperature(v float32) *float32 {
	return &v
}

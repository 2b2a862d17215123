package transcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
)

type audioFetcher struct {
	data []byte
	mime string
	err  error
}

func (f audioFetcher) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	return f.data, f.mime, f.err
}

func TestDecodeSynthesizedAudioHeader(t *testing.T) {
	for _, n := range []int{0, 2, 4800, 48001} {
		pcm := bytes.Repeat([]byte{0x01}, n)
		wav, err := DecodeSynthesizedAudio(base64.StdEncoding.EncodeToString(pcm), 24000)
		if err != nil {
			t.Fatalf("DecodeSynthesizedAudio returned error: %v", err)
		}
		if len(wav) != 44+n {
			t.Errorf("Expected %d bytes, got %d", 44+n, len(wav))
		}

		h, err := ParseWAVHeader(wav)
		if err != nil {
			t.Fatalf("ParseWAVHeader returned error: %v", err)
		}
		if h.SampleRate != 24000 {
			t.Errorf("Expected sample rate 24000, got %d", h.SampleRate)
		}
		if h.BlockAlign != 2 {
			t.Errorf("Expected block align 2, got %d", h.BlockAlign)
		}
		if h.BitsPerSample != 16 {
			t.Errorf("Expected 16 bits per sample, got %d", h.BitsPerSample)
		}
		if h.Channels != 1 {
			t.Errorf("Expected 1 channel, got %d", h.Channels)
		}
		if h.ByteRate != 48000 {
			t.Errorf("Expected byte rate 48000, got %d", h.ByteRate)
		}
		if h.DataLength != n {
			t.Errorf("Expected data length %d, got %d", n, h.DataLength)
		}
		if !bytes.Equal(wav[44:], pcm) {
			t.Error("Expected PCM samples to follow the header unchanged")
		}
	}
}

func TestWrapPCMRoundTripSampleRate(t *testing.T) {
	for _, rate := range []int{8000, 16000, 44100} {
		h, err := ParseWAVHeader(WrapPCM(make([]byte, 10), rate))
		if err != nil {
			t.Fatalf("ParseWAVHeader returned error: %v", err)
		}
		if h.SampleRate != rate || h.DataLength != 10 {
			t.Errorf("Expected rate=%d len=10, got rate=%d len=%d", rate, h.SampleRate, h.DataLength)
		}
	}
}

func TestDecodeSynthesizedAudioDefaultsAndErrors(t *testing.T) {
	wav, err := DecodeSynthesizedAudio("", 0)
	if err != nil {
		t.Fatalf("DecodeSynthesizedAudio returned error: %v", err)
	}
	h, _ := ParseWAVHeader(wav)
	if h.SampleRate != DefaultSampleRate {
		t.Errorf("Expected default sample rate, got %d", h.SampleRate)
	}

	if _, err := DecodeSynthesizedAudio("!!not base64!!", 24000); err == nil {
		t.Error("Expected error for invalid base64")
	}
	if _, err := ParseWAVHeader([]byte("RIFF")); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Expected ErrInvalidWAV, got %v", err)
	}
}

func TestEncodeAudioForTransport(t *testing.T) {
	tc := New(audioFetcher{data: []byte("abc")})
	payload, err := tc.EncodeAudioForTransport(context.Background(), "rec")
	if err != nil {
		t.Fatalf("EncodeAudioForTransport returned error: %v", err)
	}
	if payload.MIMEType != DefaultAudioMIME {
		t.Errorf("Expected default mime %s, got %s", DefaultAudioMIME, payload.MIMEType)
	}
	if payload.Data != base64.StdEncoding.EncodeToString([]byte("abc")) {
		t.Errorf("Unexpected payload %q", payload.Data)
	}

	tc = New(audioFetcher{data: []byte("abc"), mime: "audio/ogg"})
	payload, _ = tc.EncodeAudioForTransport(context.Background(), "rec")
	if payload.MIMEType != "audio/ogg" {
		t.Errorf("Expected audio/ogg, got %s", payload.MIMEType)
	}

	tc = New(audioFetcher{err: errors.New("boom")})
	if _, err := tc.EncodeAudioForTransport(context.Background(), "rec"); err == nil {
		t.Error("Expected error when fetch fails")
	}
}

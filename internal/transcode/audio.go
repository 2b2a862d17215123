package transcode

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// DefaultSampleRate is the rate of PCM returned by the speech model
	DefaultSampleRate = 24000
	// DefaultAudioMIME is used when a recording does not identify itself
	DefaultAudioMIME = "audio/webm"

	wavHeaderSize = 44
	pcmChannels   = 1
	pcmBitDepth   = 16
)

var ErrInvalidWAV = errors.New("invalid wav header")

// WAVHeader holds the fields of a canonical 44-byte PCM header
type WAVHeader struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	BlockAlign    int
	ByteRate      int
	DataLength    int
}

// EncodeAudioForTransport base64-encodes the recording behind ref
func (t *Transcoder) EncodeAudioForTransport(ctx context.Context, ref string) (*Payload, error) {
	data, mime, err := t.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	if mime == "" {
		mime = DefaultAudioMIME
	}
	return &Payload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mime,
	}, nil
}

// DecodeSynthesizedAudio wraps base64 little-endian 16-bit mono PCM in a WAV
// container. A sampleRate of zero selects DefaultSampleRate.
func DecodeSynthesizedAudio(b64PCM string, sampleRate int) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(b64PCM)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pcm payload: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return WrapPCM(pcm, sampleRate), nil
}

// WrapPCM prepends a WAV header to raw mono 16-bit PCM
func WrapPCM(pcm []byte, sampleRate int) []byte {
	blockAlign := pcmChannels * pcmBitDepth / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize+len(pcm))
	le := binary.LittleEndian
	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	le.PutUint32(out[16:20], 16)
	le.PutUint16(out[20:22], 1) // PCM
	le.PutUint16(out[22:24], pcmChannels)
	le.PutUint32(out[24:28], uint32(sampleRate))
	le.PutUint32(out[28:32], uint32(byteRate))
	le.PutUint16(out[32:34], uint16(blockAlign))
	le.PutUint16(out[34:36], pcmBitDepth)
	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)
	return out
}

// ParseWAVHeader reads back the header written by WrapPCM
func ParseWAVHeader(wav []byte) (WAVHeader, error) {
	if len(wav) < wavHeaderSize {
		return WAVHeader{}, fmt.Errorf("%w: %d bytes", ErrInvalidWAV, len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" ||
		string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		return WAVHeader{}, fmt.Errorf("%w: bad chunk ids", ErrInvalidWAV)
	}
	le := binary.LittleEndian
	return WAVHeader{
		Channels:      int(le.Uint16(wav[22:24])),
		SampleRate:    int(le.Uint32(wav[24:28])),
		ByteRate:      int(le.Uint32(wav[28:32])),
		BlockAlign:    int(le.Uint16(wav[32:34])),
		BitsPerSample: int(le.Uint16(wav[34:36])),
		DataLength:    int(le.Uint32(wav[40:44])),
	}, nil
}

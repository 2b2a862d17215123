package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SDKClient is a Transport backed by the Google generative-ai-go SDK. The
// SDK cannot set response modalities or a speech config, so requests for
// image or audio output are rejected.
type SDKClient struct {
	apiKey string
	opts   []option.ClientOption
}

// NewSDKClient returns an SDK transport
func NewSDKClient(apiKey string, opts ...option.ClientOption) *SDKClient {
	return &SDKClient{apiKey: apiKey, opts: opts}
}

// Generate sends req through the SDK
func (g *SDKClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if req.WantsMediaOutput() {
		return nil, ErrUnsupportedBySDK
	}

	parts, err := toSDKParts(req.Parts)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return fromSDKResponse(resp)
}

func toSDKParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode inline part: %w", err)
			}
			out = append(out, genai.Blob{MIMEType: p.InlineData.MIMEType, Data: data})
			continue
		}
		if p.Text != "" {
			out = append(out, genai.Text(p.Text))
		}
	}
	return out, nil
}

func fromSDKResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	out := &Response{FinishReason: candidate.FinishReason.String()}
	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			out.Parts = append(out.Parts, TextPart(string(v)))
		case genai.Blob:
			out.Parts = append(out.Parts, MediaPart(v.MIMEType, base64.StdEncoding.EncodeToString(v.Data)))
		case *genai.Blob:
			out.Parts = append(out.Parts, MediaPart(v.MIMEType, base64.StdEncoding.EncodeToString(v.Data)))
		}
	}
	if len(out.Parts) == 0 {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}
	return out, nil
}

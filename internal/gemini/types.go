package gemini

import (
	"context"
	"strings"
)

// Response modalities understood by the generateContent endpoint
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
	ModalityAudio = "AUDIO"
)

// InlineData is a base64 media part
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one piece of request or response content: text or inline media
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// TextPart builds a text part
func TextPart(text string) Part {
	return Part{Text: text}
}

// MediaPart builds an inline media part from base64 data
func MediaPart(mime, b64 string) Part {
	return Part{InlineData: &InlineData{MIMEType: mime, Data: b64}}
}

// Request is a single generateContent call
type Request struct {
	Model              string
	Parts              []Part
	ResponseModalities []string
	Voice              string
	Temperature        *float32
}

// WantsAudio reports whether the request asks for synthesized speech
func (r Request) WantsAudio() bool {
	if r.Voice != "" {
		return true
	}
	for _, m := range r.ResponseModalities {
		if m == ModalityAudio {
			return true
		}
	}
	return false
}

// WantsMediaOutput reports whether the request asks for anything beyond text
func (r Request) WantsMediaOutput() bool {
	if r.WantsAudio() {
		return true
	}
	for _, m := range r.ResponseModalities {
		if m != ModalityText {
			return true
		}
	}
	return false
}

// Response is the first candidate of a generateContent reply
type Response struct {
	Parts        []Part
	FinishReason string
}

// Text joins the text parts of the response
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

// InlineData returns the first inline media part, or nil
func (r *Response) InlineData() *InlineData {
	if r == nil {
		return nil
	}
	for _, p := range r.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData
		}
	}
	return nil
}

// Transport performs one request/response exchange with the model
type Transport interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

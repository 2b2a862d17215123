package gemini

import "context"

// Router sends text-only requests to one transport and requests for image
// or audio output to another.
type Router struct {
	text  Transport
	media Transport
}

// NewRouter pairs a text transport with a media-output transport
func NewRouter(text, media Transport) *Router {
	return &Router{text: text, media: media}
}

func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.WantsMediaOutput() {
		return r.media.Generate(ctx, req)
	}
	return r.text.Generate(ctx, req)
}

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/cinememories/cinememories/internal/media"
)

var errNotImage = errors.New("file is not a supported image")

type ImageProcessResult struct {
	DataURL  string
	MIMEType string
	Width    int
	Height   int
}

// processImageFile validates an uploaded image and embeds it as a data URL.
// Uploads are kept inline so they survive a reload.
func processImageFile(fileData []byte) (*ImageProcessResult, error) {
	mimeType := media.Sniff(fileData)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errNotImage
	}

	width, height, err := getImageDimensions(fileData)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "mime", mimeType, "error", err)
		width, height = 0, 0
	}

	return &ImageProcessResult{
		DataURL:  media.DataURL(mimeType, fileData),
		MIMEType: mimeType,
		Width:    width,
		Height:   height,
	}, nil
}

func getImageDimensions(data []byte) (int, int, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return config.Width, config.Height, nil
}

package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/cinememories/cinememories/internal/models"
)

// Row is one photo in the catalog export. Image bytes are not exported.
type Row struct {
	ID                string  `parquet:"id"`
	Name              string  `parquet:"name"`
	Category          string  `parquet:"category"`
	Narration         string  `parquet:"narration"`
	Rotation          int32   `parquet:"rotation"`
	Brightness        float64 `parquet:"brightness"`
	Contrast          float64 `parquet:"contrast"`
	Saturation        float64 `parquet:"saturation"`
	Blur              float64 `parquet:"blur"`
	Sepia             float64 `parquet:"sepia"`
	Grayscale         float64 `parquet:"grayscale"`
	HasNarrationAudio bool    `parquet:"has_narration_audio"`
	AIStylized        bool    `parquet:"ai_stylized"`
	SourceURL         string  `parquet:"source_url,optional"`
}

// RowFromPhoto flattens a photo
func RowFromPhoto(p models.Photo) Row {
	row := Row{
		ID:                p.ID,
		Name:              p.Name,
		Category:          string(p.Category),
		Narration:         p.Narration,
		Rotation:          int32(p.Rotation),
		Brightness:        p.Filters.Brightness,
		Contrast:          p.Filters.Contrast,
		Saturation:        p.Filters.Saturation,
		Blur:              p.Filters.Blur,
		Sepia:             p.Filters.Sepia,
		Grayscale:         p.Filters.Grayscale,
		HasNarrationAudio: p.NarrationAudioURL != "",
		AIStylized:        p.Stylized(),
	}
	// inline payloads would bloat the file
	if strings.HasPrefix(p.OriginalURL, "http://") || strings.HasPrefix(p.OriginalURL, "https://") {
		row.SourceURL = p.OriginalURL
	}
	return row
}

// WriteParquet writes one row per photo to w
func WriteParquet(w io.Writer, photos []models.Photo) error {
	rows := make([]Row, len(photos))
	for i, p := range photos {
		rows[i] = RowFromPhoto(p)
	}

	writer := parquet.NewGenericWriter[Row](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads every row back
func ReadParquet(r io.ReaderAt, size int64) ([]Row, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var out []Row
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return out, nil
}

// WriteFile exports photos to path
func WriteFile(path string, photos []models.Photo) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteParquet(file, photos); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	slog.Info("Exported photo catalog", "path", path, "rows", len(photos))
	return nil
}

// ReadFile reads an export written by WriteFile
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return ReadParquet(file, info.Size())
}

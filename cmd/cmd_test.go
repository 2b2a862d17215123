package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinememories/cinememories/internal/config"
	"github.com/cinememories/cinememories/internal/export"
	"github.com/cinememories/cinememories/internal/gemini"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode returned error: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
}

func TestReadImageDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b_sunset.png"))
	writePNG(t, filepath.Join(dir, "a_family.png"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	photos, err := readImageDir(dir, 1<<20)
	if err != nil {
		t.Fatalf("readImageDir returned error: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("Expected 2 photos, got %d", len(photos))
	}
	if photos[0].Name != "A Family" || photos[1].Name != "B Sunset" {
		t.Errorf("Expected name order, got %q, %q", photos[0].Name, photos[1].Name)
	}
	if !strings.HasPrefix(photos[0].URL, "data:image/png;base64,") {
		t.Errorf("Expected png data url, got %.40s", photos[0].URL)
	}

	if photos, _ := readImageDir(dir, 10); len(photos) != 0 {
		t.Errorf("Expected oversized files skipped, got %d", len(photos))
	}
}

func TestRenderTablePlainWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"#", "Name"}, [][]string{{"1", "Beach"}, {"2"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "Beach") || !strings.Contains(out, "+") {
		t.Errorf("Expected ASCII table, got:\n%s", out)
	}
	if renderTable(&buf, nil, nil, nil) != "" {
		t.Error("Expected empty output without headers")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncate("a long narration", 6); got != "a lon…" {
		t.Errorf("Expected truncated, got %q", got)
	}
}

func TestCategorizeAndExportCommands(t *testing.T) {
	stateDir := t.TempDir()
	imageDir := t.TempDir()
	writePNG(t, filepath.Join(imageDir, "dog.png"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CINEMEMORIES_STATE_DIR", stateDir)
	t.Setenv("CINEMEMORIES_CATEGORIZE_DELAY_MS", "0")
	configPath := filepath.Join(stateDir, "missing.yaml")

	run := func(args ...string) string {
		t.Helper()
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(append(args, "--config", configPath))
		if err := root.Execute(); err != nil {
			t.Fatalf("%v returned error: %v", args, err)
		}
		return out.String()
	}

	out := run("categorize", imageDir)
	if !strings.Contains(out, "Dog") || !strings.Contains(out, "skipped_no_credential") {
		t.Errorf("Expected skipped row for Dog, got:\n%s", out)
	}

	out = run("photos")
	if !strings.Contains(out, "Dog") || !strings.Contains(out, "Uncategorized") {
		t.Errorf("Expected saved photo listed, got:\n%s", out)
	}

	exportPath := filepath.Join(stateDir, "photos.parquet")
	run("export", "--out", exportPath)
	rows, err := export.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Dog" {
		t.Errorf("Expected one exported row for Dog, got %+v", rows)
	}
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		transport string
		check     func(gemini.Transport) bool
	}{
		{"auto", func(tr gemini.Transport) bool { _, ok := tr.(*gemini.Router); return ok }},
		{"rest", func(tr gemini.Transport) bool { _, ok := tr.(*gemini.Client); return ok }},
		{"sdk", func(tr gemini.Transport) bool { _, ok := tr.(*gemini.SDKClient); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			tr := newTransport(config.Gemini{APIKey: "key", Transport: tt.transport})
			if !tt.check(tr) {
				t.Errorf("Unexpected transport %T for %s", tr, tt.transport)
			}
		})
	}
}

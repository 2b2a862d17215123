package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-450, 270},
		{100, 90},
	}
	for _, tt := range tests {
		if got := NormalizeRotation(tt.in); got != tt.want {
			t.Errorf("NormalizeRotation(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	p := Photo{Rotation: 270}
	p.Rotate(90)
	if p.Rotation != 0 {
		t.Errorf("Expected rotation to wrap to 0, got %d", p.Rotation)
	}
}

func TestMatchAIChoice(t *testing.T) {
	tests := []struct {
		answer string
		want   Category
		ok     bool
	}{
		{"People", CategoryPeople, true},
		{"  landscapes.\n", CategoryLandscapes, true},
		{"**Animals**", CategoryAnimals, true},
		{"\"Selfies\"", CategorySelfies, true},
		{"Uncategorized", CategoryUncategorized, false},
		{"A photo of a dog", CategoryUncategorized, false},
		{"", CategoryUncategorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, ok := MatchAIChoice(tt.answer)
			if got != tt.want || ok != tt.ok {
				t.Errorf("MatchAIChoice(%q) = %s, %v; want %s, %v", tt.answer, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAIChoicesExcludeUncategorized(t *testing.T) {
	choices := AIChoices()
	if len(choices) != len(Builtins())-1 {
		t.Errorf("Expected %d choices, got %d", len(Builtins())-1, len(choices))
	}
	for _, c := range choices {
		if c == CategoryUncategorized {
			t.Error("Uncategorized must not be offered to the model")
		}
	}
}

func TestFilterCSS(t *testing.T) {
	css := DefaultFilters().CSS()
	for _, want := range []string{"brightness(100%)", "contrast(100%)", "saturate(100%)", "blur(0px)", "sepia(0%)", "grayscale(0%)"} {
		if !strings.Contains(css, want) {
			t.Errorf("Expected %q in %q", want, css)
		}
	}
}

func TestSessionStateJSON(t *testing.T) {
	state := NewSessionState()
	state.EditingID = "abc"
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	for _, key := range []string{`"photos":[]`, `"currentView":"gallery"`, `"editingPhotoId":"abc"`, `"volume":50`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}

	state.Volume = 140
	state.IsPlaying = true
	state.CurrentView = ViewSlideshow
	state.ResetTransient()
	if state.Volume != 100 || state.IsPlaying || state.CurrentView != ViewGallery || state.EditingID != "" {
		t.Errorf("Unexpected state after reset: %+v", state)
	}
}

func TestNameFromFilename(t *testing.T) {
	tests := map[string]string{
		"beach_day-2024.jpg":      "Beach Day 2024",
		"/tmp/uploads/IMG 01.png": "Img 01",
		"grandma's--garden.webp":  "Grandmas Garden",
		".jpg":                    "Untitled",
		"":                        "Untitled",
	}
	for in, want := range tests {
		if got := NameFromFilename(in); got != want {
			t.Errorf("NameFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

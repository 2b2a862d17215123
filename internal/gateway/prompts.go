package gateway

import (
	"fmt"
	"strings"

	"github.com/cinememories/cinememories/internal/models"
)

// NarrationPlaceholder is returned when a caption cannot be generated
const NarrationPlaceholder = "A moment worth remembering."

func categorizePrompt() string {
	choices := make([]string, 0, len(models.AIChoices()))
	for _, c := range models.AIChoices() {
		choices = append(choices, string(c))
	}
	return fmt.Sprintf(`Analyze this photo and choose exactly ONE category from this list:
%s

Respond with the category name only, with no punctuation or explanation.`, strings.Join(choices, ", "))
}

func narratePrompt(tone string) string {
	tone = strings.TrimSpace(tone)
	if tone == "" {
		tone = "nostalgic"
	}
	return fmt.Sprintf(`Write a short, evocative narration for this photo as it appears in a cinematic slideshow.
Tone: %s.
Keep it under 20 words. Respond with the narration text only, without quotes.`, tone)
}

const transcribePrompt = `Transcribe this audio recording accurately.
Respond with the transcription only. If nothing intelligible is said, respond with an empty message.`

func stylizePrompt(style string) string {
	return fmt.Sprintf(`Transform this photo into the "%s" art style.
Keep the composition, subjects and framing recognizable. Return only the edited image.`, strings.TrimSpace(style))
}

func removeObjectPrompt(description string) string {
	return fmt.Sprintf(`Remove the following from this photo: %s.
Fill the removed area naturally so it blends with the surrounding background. Return only the edited image.`, strings.TrimSpace(description))
}

const removeMarkedObjectPrompt = `A red filled circle marks an object in this photo.
Remove the marked object together with the red circle, and fill the area naturally so it blends with the surrounding background.
Return only the edited image.`

func speechPrompt(text string) string {
	return "Narrate warmly, like a storyteller in a documentary: " + strings.TrimSpace(text)
}

// TrackPreset selects the prompt and voice used to synthesize a theme
type TrackPreset struct {
	Category string
	Tag      string
	Voice    string
	Prompt   string
}

var trackPresets = map[string]TrackPreset{
	"Default": {
		Category: "Default",
		Tag:      "Soothing",
		Voice:    "Kore",
		Prompt:   "Softly hum a slow, soothing and gentle melody, calm like a lullaby, with no words.",
	},
	"Cinematic": {
		Category: "Cinematic",
		Tag:      "Dramatic",
		Voice:    "Charon",
		Prompt:   "In a deep, dramatic voice, hum a slow and epic cinematic theme that builds in intensity, with no words.",
	},
	"Upbeat": {
		Category: "Upbeat",
		Tag:      "Energetic",
		Voice:    "Puck",
		Prompt:   "With bright energy, hum a fast, cheerful and upbeat tune, playful and bouncy, with no words.",
	},
}

// PresetFor returns the preset for category, falling back to Default
func PresetFor(category string) TrackPreset {
	for name, preset := range trackPresets {
		if strings.EqualFold(name, strings.TrimSpace(category)) {
			return preset
		}
	}
	return trackPresets["Default"]
}

// TrackCategories lists the preset names
func TrackCategories() []string {
	return []string{"Default", "Cinematic", "Upbeat"}
}

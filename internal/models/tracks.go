package models

var defaultTracks = []Track{
	{Name: "Gentle Piano", URL: "https://cdn.pixabay.com/audio/2022/02/22/audio_d1718ab41b.mp3", Tag: "Calm"},
	{Name: "Cinematic Rise", URL: "https://cdn.pixabay.com/audio/2022/03/10/audio_c8c8a73467.mp3", Tag: "Cinematic"},
	{Name: "Happy Ukulele", URL: "https://cdn.pixabay.com/audio/2022/01/18/audio_d0a13f69d2.mp3", Tag: "Upbeat"},
	{Name: "Lo-Fi Memories", URL: "https://cdn.pixabay.com/audio/2022/05/27/audio_1808fbf07a.mp3", Tag: "Chill"},
}

// DefaultTracks returns the built-in background music library
func DefaultTracks() []Track {
	out := make([]Track, len(defaultTracks))
	copy(out, defaultTracks)
	return out
}

package playhttest

import "github.com/AltairaLabs/playht-go/api"

// DefaultVoices returns the stock voices served when WithVoices is not used.
func DefaultVoices() []api.Voice {
	return []api.Voice{
		{
			ID:       "s3://voice-cloning-zero-shot/d9ff78ba-d016-47f6-b0ef-dd630f59414e/female-cs/manifest.json",
			Name:     "Susan",
			Accent:   "american",
			Age:      "adult",
			Gender:   "female",
			Language: "English (US)",
			LangCode: "en-US",
			Style:    "narrative",
			Tempo:    "neutral",
			Texture:  "smooth",
		},
		{
			ID:       "s3://voice-cloning-zero-shot/820da3d2-3a3b-42e7-844d-e68db835a206/sarah/manifest.json",
			Name:     "Sarah",
			Accent:   "british",
			Gender:   "female",
			Language: "English (GB)",
			LangCode: "en-GB",
		},
		{
			ID:       "larry",
			Name:     "Larry",
			Accent:   "american",
			Gender:   "male",
			Language: "English (US)",
			LangCode: "en-US",
			Loudness: "neutral",
		},
	}
}

// DefaultAudio returns three fake mp3 chunks of distinct sizes.
func DefaultAudio() [][]byte {
	return [][]byte{
		append([]byte("ID3"), make([]byte, 509)...),
		pattern(1024, 0x11),
		pattern(300, 0x7f),
	}
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

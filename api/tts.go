package api

// VoiceEngine selects the synthesis engine.
type VoiceEngine string

// Voice engines. PlayHT2.0 is the server default.
const (
	VoiceEnginePlayHT1      VoiceEngine = "PlayHT1.0"
	VoiceEnginePlayHT2      VoiceEngine = "PlayHT2.0"
	VoiceEnginePlayHT2Turbo VoiceEngine = "PlayHT2.0-turbo"
)

// DefaultVoiceEngine is the engine used by DefaultTTSJobRequest and DefaultTTSStreamRequest.
const DefaultVoiceEngine = VoiceEnginePlayHT2

// Valid reports whether e is a known engine.
func (e VoiceEngine) Valid() bool {
	switch e {
	case VoiceEnginePlayHT1, VoiceEnginePlayHT2, VoiceEnginePlayHT2Turbo:
		return true
	}
	return false
}

// OutputFormat is the encoding of generated audio.
type OutputFormat string

// Output formats.
const (
	OutputFormatMP3   OutputFormat = "mp3"
	OutputFormatWAV   OutputFormat = "wav"
	OutputFormatOGG   OutputFormat = "ogg"
	OutputFormatFLAC  OutputFormat = "flac"
	OutputFormatMulaw OutputFormat = "mulaw"
)

// DefaultOutputFormat is mp3.
const DefaultOutputFormat = OutputFormatMP3

// Valid reports whether f is a known format.
func (f OutputFormat) Valid() bool {
	return f.MIMEType() != ""
}

// MIMEType returns the media type the API serves for f, or "" when unknown.
func (f OutputFormat) MIMEType() string {
	switch f {
	case OutputFormatMP3:
		return MIMEAudioMPEG
	case OutputFormatWAV:
		return "audio/wav"
	case OutputFormatOGG:
		return "audio/ogg"
	case OutputFormatFLAC:
		return "audio/flac"
	case OutputFormatMulaw:
		return "audio/basic"
	}
	return ""
}

// audioAccept returns the Accept header for audio in format f.
// An unset or unknown format falls back to audio/mpeg.
func audioAccept(f Optional[OutputFormat]) string {
	if format, ok := f.Get(); ok {
		if mime := format.MIMEType(); mime != "" {
			return mime
		}
	}
	return MIMEAudioMPEG
}

// Quality is the quality tier of generated audio.
type Quality string

// Quality tiers.
const (
	QualityDraft   Quality = "draft"
	QualityLow     Quality = "low"
	QualityMedium  Quality = "medium"
	QualityHigh    Quality = "high"
	QualityPremium Quality = "premium"
)

// DefaultQuality is draft.
const DefaultQuality = QualityDraft

// Valid reports whether q is a known tier.
func (q Quality) Valid() bool {
	switch q {
	case QualityDraft, QualityLow, QualityMedium, QualityHigh, QualityPremium:
		return true
	}
	return false
}

// Emotion steers the delivery of the generated voice.
type Emotion string

// Emotions.
const (
	EmotionFemaleHappy     Emotion = "female_happy"
	EmotionFemaleSad       Emotion = "female_sad"
	EmotionFemaleAngry     Emotion = "female_angry"
	EmotionFemaleFearful   Emotion = "female_fearful"
	EmotionFemaleDisgust   Emotion = "female_disgust"
	EmotionFemaleSurprised Emotion = "female_surprised"
	EmotionMaleHappy       Emotion = "male_happy"
	EmotionMaleSad         Emotion = "male_sad"
	EmotionMaleAngry       Emotion = "male_angry"
	EmotionMaleFearful     Emotion = "male_fearful"
	EmotionMaleDisgust     Emotion = "male_disgust"
	EmotionMaleSurprised   Emotion = "male_surprised"
)

// DefaultEmotion is female_happy.
const DefaultEmotion = EmotionFemaleHappy

var emotions = map[Emotion]bool{
	EmotionFemaleHappy: true, EmotionFemaleSad: true, EmotionFemaleAngry: true,
	EmotionFemaleFearful: true, EmotionFemaleDisgust: true, EmotionFemaleSurprised: true,
	EmotionMaleHappy: true, EmotionMaleSad: true, EmotionMaleAngry: true,
	EmotionMaleFearful: true, EmotionMaleDisgust: true, EmotionMaleSurprised: true,
}

// Valid reports whether e is a known emotion.
func (e Emotion) Valid() bool {
	return emotions[e]
}

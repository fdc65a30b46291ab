package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AltairaLabs/playht-go/api"
)

// ttsFlags are the synthesis parameters shared by job and stream commands.
// Only flags the user set end up in the request.
type ttsFlags struct {
	flags *pflag.FlagSet

	text          string
	voice         string
	quality       string
	format        string
	engine        string
	emotion       string
	speed         float64
	temperature   float64
	sampleRate    int
	seed          int
	voiceGuidance float64
	styleGuidance float64
	textGuidance  float64
}

func (f *ttsFlags) register(cmd *cobra.Command, withTextGuidance bool) {
	fs := cmd.Flags()
	f.flags = fs
	fs.StringVarP(&f.text, "text", "t", "", "Text to synthesize")
	fs.StringVar(&f.voice, "voice", "", "Voice id")
	fs.StringVar(&f.quality, "quality", "", "Quality: draft, low, medium, high or premium")
	fs.StringVar(&f.format, "format", "", "Output format: mp3, wav, ogg, flac or mulaw")
	fs.StringVar(&f.engine, "engine", "", "Voice engine: PlayHT1.0, PlayHT2.0 or PlayHT2.0-turbo")
	fs.StringVar(&f.emotion, "emotion", "", "Emotion, e.g. female_happy")
	fs.Float64Var(&f.speed, "speed", 1, "Speech speed")
	fs.Float64Var(&f.temperature, "temperature", 0, "Sampling temperature")
	fs.IntVar(&f.sampleRate, "sample-rate", 0, "Sample rate in Hz")
	fs.IntVar(&f.seed, "seed", 0, "Random seed")
	fs.Float64Var(&f.voiceGuidance, "voice-guidance", 0, "Voice guidance")
	fs.Float64Var(&f.styleGuidance, "style-guidance", 0, "Style guidance")
	if withTextGuidance {
		fs.Float64Var(&f.textGuidance, "text-guidance", 0, "Text guidance")
	}
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("voice")
}

func (f *ttsFlags) validate() error {
	if f.quality != "" && !api.Quality(f.quality).Valid() {
		return fmt.Errorf("unknown quality %q", f.quality)
	}
	if f.format != "" && !api.OutputFormat(f.format).Valid() {
		return fmt.Errorf("unknown output format %q", f.format)
	}
	if f.engine != "" && !api.VoiceEngine(f.engine).Valid() {
		return fmt.Errorf("unknown voice engine %q", f.engine)
	}
	if f.emotion != "" && !api.Emotion(f.emotion).Valid() {
		return fmt.Errorf("unknown emotion %q", f.emotion)
	}
	return nil
}

func optString[T ~string](v string) api.Optional[T] {
	if v == "" {
		return api.None[T]()
	}
	return api.Some(T(v))
}

func optFlag[T any](fs *pflag.FlagSet, name string, v T) api.Optional[T] {
	if !fs.Changed(name) {
		return api.None[T]()
	}
	return api.Some(v)
}

func (f *ttsFlags) jobRequest() (api.TTSJobRequest, error) {
	if err := f.validate(); err != nil {
		return api.TTSJobRequest{}, err
	}
	return api.TTSJobRequest{
		Text:          api.Some(f.text),
		Voice:         api.Some(f.voice),
		Quality:       optString[api.Quality](f.quality),
		OutputFormat:  optString[api.OutputFormat](f.format),
		VoiceEngine:   optString[api.VoiceEngine](f.engine),
		Emotion:       optString[api.Emotion](f.emotion),
		Speed:         optFlag(f.flags, "speed", f.speed),
		Temperature:   optFlag(f.flags, "temperature", f.temperature),
		SampleRate:    optFlag(f.flags, "sample-rate", f.sampleRate),
		Seed:          optFlag(f.flags, "seed", f.seed),
		VoiceGuidance: optFlag(f.flags, "voice-guidance", f.voiceGuidance),
		StyleGuidance: optFlag(f.flags, "style-guidance", f.styleGuidance),
	}, nil
}

func (f *ttsFlags) streamRequest() (api.TTSStreamRequest, error) {
	job, err := f.jobRequest()
	if err != nil {
		return api.TTSStreamRequest{}, err
	}
	return api.TTSStreamRequest{
		Text:          job.Text,
		Voice:         job.Voice,
		Quality:       job.Quality,
		OutputFormat:  job.OutputFormat,
		VoiceEngine:   job.VoiceEngine,
		Emotion:       job.Emotion,
		Speed:         job.Speed,
		Temperature:   job.Temperature,
		SampleRate:    job.SampleRate,
		Seed:          job.Seed,
		VoiceGuidance: job.VoiceGuidance,
		StyleGuidance: job.StyleGuidance,
		TextGuidance:  optFlag(f.flags, "text-guidance", f.textGuidance),
	}, nil
}

// openOutput returns the audio destination: stdout for "" or "-", else a new file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	//nolint:gosec // G304: output path is supplied by the user
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

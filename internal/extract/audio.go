package extract

import (
	"context"
	"errors"
)

// AudioExtensions are the formats handed to the transcriber.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm"}

// Transcriber converts a whole audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// AudioExtractor delegates extraction to a speech-to-text model.
type AudioExtractor struct {
	transcriber Transcriber
}

// NewAudio returns an extractor backed by t.
func NewAudio(t Transcriber) *AudioExtractor {
	return &AudioExtractor{transcriber: t}
}

// Extract returns the transcript of the audio file at path.
func (a *AudioExtractor) Extract(ctx context.Context, path string) (string, error) {
	if a.transcriber == nil {
		return "", errors.New("no transcriber configured")
	}
	return a.transcriber.Transcribe(ctx, path)
}

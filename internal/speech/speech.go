// Package speech wraps the two external speech services: a local
// Whisper-compatible server for transcription and ElevenLabs for synthesis.
package speech

import "context"

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Synthesizer renders assistant replies as audio. Enabled reports whether
// the service is configured; callers skip synthesis when it is not.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Enabled() bool
}

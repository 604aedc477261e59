package orchestrator

import (
	"context"
	"fmt"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/tags"
)

// Config is the part of the runtime configuration the tagger acts on.
type Config struct {
	TrailingEnabled       bool
	TrailingBufferSeconds float64
}

// Decoder turns a media file into a fixed-rate mono waveform and its
// duration in seconds.
type Decoder interface {
	Decode(ctx context.Context, path string) (audio.Waveform, float64, error)
}

// Transcriber returns word tags in order. No speech is an empty slice, not
// an error.
type Transcriber interface {
	Transcribe(ctx context.Context, w audio.Waveform) ([]tags.Tag, error)
}

type FlushStatus int

const (
	// FlushNone: nothing was buffered, nothing happened.
	FlushNone FlushStatus = iota
	FlushWritten
	// FlushNoSpeech: the combined audio produced no tags and was discarded.
	FlushNoSpeech
	FlushFailed
)

func (s FlushStatus) String() string {
	switch s {
	case FlushNone:
		return "none"
	case FlushWritten:
		return "written"
	case FlushNoSpeech:
		return "no_speech"
	case FlushFailed:
		return "failed"
	}
	return fmt.Sprintf("FlushStatus(%d)", int(s))
}

type FlushResult struct {
	Status    FlushStatus
	Source    string  // first buffered file
	Segments  int     // files covered
	Duration  float64 // seconds of audio covered
	Sentences int
}

// Report describes one Tag call.
type Report struct {
	File     string
	RawTags  int
	Buffered float64 // seconds left in the trailing buffer
	Flush    FlushResult
}

type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

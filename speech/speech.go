// Package speech composes the collaborators behind a transcription: a
// recognizer producing timed words, an optional translator, and optional
// text correction that restores punctuation and capitalization.
//
// Model satisfies the tagger's transcriber contract: word tags in order,
// empty when nothing was said.
package speech

import (
	"context"
	"errors"

	"github.com/maastricht-university/speech-tagger/audio"
)

// ErrMalformedPayload marks a collaborator response that could not be
// understood. Model logs it and treats the unit of work as producing no
// tags.
var ErrMalformedPayload = errors.New("speech: malformed payload")

// Word is a recognized word and the time it ends at.
type Word struct {
	Text string  `json:"text"`
	End  float64 `json:"end"`
}

type Recognizer interface {
	Recognize(ctx context.Context, w audio.Waveform) ([]Word, error)
}

// Translator sends a prompt and returns the raw completion. Parsing is left
// to ParseTranslation.
type Translator interface {
	Translate(ctx context.Context, prompt string) (string, error)
}

// Corrector rewrites text, typically restoring punctuation or case. Empty
// input comes back unchanged.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Chain runs correctors in order.
type Chain []Corrector

func (c Chain) Correct(ctx context.Context, text string) (string, error) {
	var err error
	for _, cr := range c {
		if text == "" {
			return text, nil
		}
		if text, err = cr.Correct(ctx, text); err != nil {
			return "", err
		}
	}
	return text, nil
}

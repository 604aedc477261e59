package clients

import (
	"context"
	"fmt"

	"github.com/maastricht-university/speech-tagger/speech"
)

// --- Punctuation (/restore) ---
type PunctReq struct {
	Text string `json:"text"`
}
type PunctResp struct {
	Text *string `json:"text"`
}

func (h *HTTP) Punctuate(ctx context.Context, url, text string) (string, error) {
	var out PunctResp
	if err := h.postJSON(ctx, url+"/restore", PunctReq{Text: text}, &out, "punctuation"); err != nil {
		return "", err
	}
	if out.Text == nil {
		return "", fmt.Errorf("%w: punctuation reply without text", speech.ErrMalformedPayload)
	}
	return *out.Text, nil
}

type Punctuator struct {
	h   *HTTP
	url string
}

func NewPunctuator(h *HTTP, url string) *Punctuator { return &Punctuator{h: h, url: url} }

func (p *Punctuator) Correct(ctx context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}
	return p.h.Punctuate(ctx, p.url, text)
}

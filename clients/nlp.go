package clients

import (
	"context"

	"github.com/maastricht-university/speech-tagger/speech"
)

// --- NLP (/analyze) ---
type NLPReq struct {
	Text string `json:"text"`
}
type NLPResp struct {
	Tokens []speech.Token `json:"tokens"`
}

func (h *HTTP) NLP(ctx context.Context, url, text string) (*NLPResp, error) {
	var out NLPResp
	if err := h.postJSON(ctx, url+"/analyze", NLPReq{Text: text}, &out, "nlp"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Capitalizer restores case on proper nouns using the part-of-speech tags
// from the NLP service.
type Capitalizer struct {
	h   *HTTP
	url string
}

func NewCapitalizer(h *HTTP, url string) *Capitalizer { return &Capitalizer{h: h, url: url} }

func (c *Capitalizer) Correct(ctx context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}
	out, err := c.h.NLP(ctx, c.url, text)
	if err != nil {
		return "", err
	}
	return speech.CapitalizeTokens(out.Tokens), nil
}

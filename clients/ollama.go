package clients

import (
	"context"
)

// --- Ollama (/api/generate) ---
type GenerateReq struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}
type GenerateResp struct {
	Response string `json:"response"`
}

func (h *HTTP) Generate(ctx context.Context, url string, req GenerateReq) (*GenerateResp, error) {
	var out GenerateResp
	if err := h.postJSON(ctx, url+"/api/generate", req, &out, "generate"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ollama translates through a local LLM. Sampling is pinned so the same
// audio gives the same captions.
type Ollama struct {
	h     *HTTP
	url   string
	model string
}

func NewOllama(h *HTTP, url, model string) *Ollama { return &Ollama{h: h, url: url, model: model} }

func (o *Ollama) Translate(ctx context.Context, prompt string) (string, error) {
	out, err := o.h.Generate(ctx, o.url, GenerateReq{
		Model:   o.model,
		Prompt:  prompt,
		Options: map[string]any{"seed": 1, "temperature": 0},
	})
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

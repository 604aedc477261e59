// Package clients holds the backends behind the speech capabilities: HTTP
// model services, OpenAI-compatible APIs, and Gemini.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/maastricht-university/speech-tagger/speech"
)

const DefaultTimeout = 60 * time.Second

type HTTP struct{ c *http.Client }

func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

func (h *HTTP) do(req *http.Request, what string) (*http.Response, error) {
	req.Header.Set("X-Request-ID", uuid.NewString())
	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s %s: %s", what, resp.Status, string(body))
	}
	return resp, nil
}

// postJSON posts in and decodes the reply into out. An undecodable reply
// wraps speech.ErrMalformedPayload.
func (h *HTTP) postJSON(ctx context.Context, url string, in, out any, what string) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.do(req, what)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s decode: %v", speech.ErrMalformedPayload, what, err)
	}
	return nil
}

// postFile uploads r as the multipart field "file" and decodes the reply
// into out.
func (h *HTTP) postFile(ctx context.Context, url, name string, r io.Reader, out any, what string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.do(req, what)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s decode: %v", speech.ErrMalformedPayload, what, err)
	}
	return nil
}

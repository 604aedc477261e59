package clients

import (
	"context"
	"os"
	"path/filepath"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/speech"
)

type ASRResp struct {
	Words    []speech.Word `json:"words"`
	Language string        `json:"language"`
}

// ASR is a recognizer backed by an HTTP model service exposing
// POST /transcribe (multipart wav upload).
type ASR struct {
	h      *HTTP
	url    string
	tmpDir string
}

func NewASR(h *HTTP, url, tmpDir string) *ASR {
	return &ASR{h: h, url: url, tmpDir: tmpDir}
}

func (a *ASR) Recognize(ctx context.Context, w audio.Waveform) ([]speech.Word, error) {
	if len(w.Samples) == 0 {
		return nil, nil
	}
	path, err := audio.WriteTempWAV(a.tmpDir, w)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	out, err := a.h.ASR(ctx, a.url, path)
	if err != nil {
		return nil, err
	}
	return out.Words, nil
}

// ASR uploads the wav file at wavPath for transcription.
func (h *HTTP) ASR(ctx context.Context, url, wavPath string) (*ASRResp, error) {
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var out ASRResp
	if err := h.postFile(ctx, url+"/transcribe", filepath.Base(wavPath), fd, &out, "asr"); err != nil {
		return nil, err
	}
	return &out, nil
}

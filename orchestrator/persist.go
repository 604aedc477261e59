package orchestrator

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/maastricht-university/speech-tagger/store"
)

const (
	RawSuffix        = "_tags.json"
	PrettifiedSuffix = "-prettified_tags.json"
)

// RawName is the artifact holding the word tags of one file.
func RawName(path string) string { return filepath.Base(path) + RawSuffix }

// PrettifiedName is the artifact holding the sentence tags of a window that
// started at path.
func PrettifiedName(path string) string { return filepath.Base(path) + PrettifiedSuffix }

func writeJSON(ctx context.Context, s store.FileStore, name string, v any) error {
	w, err := s.Write(ctx, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/tags"
)

func asrServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"words":[{"text":"hello","end":0.4},{"text":"there.","end":0.9}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeSilence(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := audio.Waveform{SampleRate: 16000, Channels: 1, Samples: make([]float32, 16000)}
	if err := audio.WriteWAV(f, w); err != nil {
		t.Fatal(err)
	}
	return p
}

func writeConfig(t *testing.T, dir, asrURL string) string {
	t.Helper()
	body := strings.Join([]string{
		"pipeline:",
		"  log_level: error",
		"audio:",
		"  decoder: wav",
		"  tmp_dir: " + dir,
		"services:",
		"  asr:",
		"    url: " + asrURL,
		"output:",
		"  dir: " + filepath.Join(dir, "out"),
	}, "\n")
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func readTags(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatal(err)
	}
}

func TestBatchRawTags(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir, asrServer(t).URL)
	in := writeSilence(t, dir, "a.wav")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-file", conf, in})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var got []tags.Tag
	readTags(t, filepath.Join(dir, "out", "a.wav_tags.json"), &got)
	want := []tags.Tag{{StartTime: 0.4, EndTime: 0.4, Text: "Hello"}, {StartTime: 0.9, EndTime: 0.9, Text: "there."}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("raw tags = %+v, want %+v", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "a.wav-prettified_tags.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("prettified artifact written without trailing mode: %v", err)
	}
}

func TestTrailingFromEnv(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir, asrServer(t).URL)
	a := writeSilence(t, dir, "a.wav")
	b := writeSilence(t, dir, "b.wav")
	t.Setenv("SPEECH_TAGGER_TRAILING", "true")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-file", conf, "--trailing-buffer", "1.5", a, b})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var got []tags.Augmented
	readTags(t, filepath.Join(dir, "out", "a.wav-prettified_tags.json"), &got)
	if len(got) != 1 {
		t.Fatalf("sentences = %+v", got)
	}
	s := got[0]
	if s.Text != "Hello there." || s.StartTime != 0.4 || s.EndTime != 0.9 || s.SourceMedia != "a.wav" || s.Track != tags.Track {
		t.Errorf("sentence = %+v", s)
	}
	for _, name := range []string{"a.wav_tags.json", "b.wav_tags.json"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("raw artifact %s: %v", name, err)
		}
	}
}

func TestLiveModeFinalizes(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir, asrServer(t).URL)
	a := writeSilence(t, dir, "a.wav")

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(a + "\n\n"))
	cmd.SetArgs([]string{"--config-file", conf, "--live", "--trailing", "--trailing-buffer", "60"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// below threshold, so only the end of input flushes the window
	if _, err := os.Stat(filepath.Join(dir, "out", "a.wav-prettified_tags.json")); err != nil {
		t.Errorf("finalize did not flush: %v", err)
	}
}

func TestFailedFileContinues(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir, asrServer(t).URL)
	b := writeSilence(t, dir, "b.wav")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-file", conf, filepath.Join(dir, "missing.wav"), b})
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	if !errors.Is(err, errFailures) {
		t.Fatalf("err = %v, want errFailures", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("command printed its own error; main already does: %q", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "b.wav_tags.json")); err != nil {
		t.Errorf("later file not tagged: %v", err)
	}
}

func TestInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir, asrServer(t).URL)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-file", conf, "--config", `{"runtime": {"trailing_enabled": true, "trailing_buffer_seconds": 0}}`, "x.wav"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected validation error")
	}
}

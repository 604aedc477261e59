package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Runtime.TrailingEnabled {
		t.Error("trailing should default to off")
	}
	if c.Runtime.TrailingBufferSeconds != 30 || c.Audio.SampleRate != 16000 || c.Postprocessing.SentenceGap != 1.0 {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestLoadFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.yaml")
	body := "runtime:\n  trailing_enabled: true\n  trailing_buffer_seconds: 12.5\noutput:\n  dir: out\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Runtime.TrailingEnabled || c.Runtime.TrailingBufferSeconds != 12.5 || c.Output.Dir != "out" {
		t.Errorf("file values not applied: %+v", c.Runtime)
	}
	if c.Audio.SampleRate != 16000 || c.Output.Backend != "local" {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadEnvGuess(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config", "prod"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "pipeline:\n  log_level: warn\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "prod", "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "prod")

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Pipeline.LogLvl != "warn" {
		t.Errorf("log level = %q", c.Pipeline.LogLvl)
	}
}

func TestApplyOverride(t *testing.T) {
	c := Default()
	c.Output.Dir = "from-file"
	err := c.ApplyOverride(`{"runtime": {"trailing_enabled": true}, "services": {"translation": {"model": "mistral"}}}`)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Runtime.TrailingEnabled {
		t.Error("override not applied")
	}
	if c.Runtime.TrailingBufferSeconds != 30 || c.Output.Dir != "from-file" || c.Services.Translation.Backend != "ollama" {
		t.Errorf("override clobbered untouched keys: %+v", c)
	}
	if c.Services.Translation.Model != "mistral" {
		t.Errorf("model = %q", c.Services.Translation.Model)
	}

	if err := c.ApplyOverride(`{"runtime": [`); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad json: err = %v", err)
	}
}

func TestApplyOverrideUnknownKeys(t *testing.T) {
	for name, raw := range map[string]string{
		"top level typo": `{"pretty_trail": true}`,
		"wrong nesting":  `{"trailing_enabled": true}`,
		"nested typo":    `{"runtime": {"trailing_buffer": 5}}`,
		"mixed":          `{"runtime": {"trailing_enabled": true, "buffer": 5}}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			if err := c.ApplyOverride(raw); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if c.Runtime.TrailingEnabled || c.Runtime.TrailingBufferSeconds != 30 {
				t.Errorf("runtime changed: %+v", c.Runtime)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Root){
		"zero trailing buffer": func(c *Root) { c.Runtime.TrailingEnabled = true; c.Runtime.TrailingBufferSeconds = 0 },
		"zero sample rate":     func(c *Root) { c.Audio.SampleRate = 0 },
		"unknown decoder":      func(c *Root) { c.Audio.Decoder = "sox" },
		"asr without url":      func(c *Root) { c.Services.ASR.URL = "" },
		"unknown asr":          func(c *Root) { c.Services.ASR.Backend = "kaldi" },
		"gemini without key": func(c *Root) {
			c.Services.Translation = Translation{Enabled: true, Backend: "gemini", Prompt: "p"}
		},
		"translation without prompt": func(c *Root) {
			c.Services.Translation = Translation{Enabled: true, Backend: "ollama", URL: "u", Model: "m"}
		},
		"s3 without bucket": func(c *Root) { c.Output.Backend = "s3" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}

	c := Default()
	c.Runtime.TrailingBufferSeconds = 0
	if err := c.Validate(); err != nil {
		t.Errorf("trailing buffer is irrelevant while trailing is off: %v", err)
	}
}

func TestTaggerConfig(t *testing.T) {
	c := Default()
	c.Runtime = Runtime{TrailingEnabled: true, TrailingBufferSeconds: 5}
	got := c.Tagger()
	if !got.TrailingEnabled || got.TrailingBufferSeconds != 5 {
		t.Errorf("Tagger() = %+v", got)
	}
}

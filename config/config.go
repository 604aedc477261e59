package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/speech-tagger/orchestrator"
)

var ErrInvalid = errors.New("invalid config")

type Service struct {
	URL string `yaml:"url"`
}

type ASR struct {
	Backend  string `yaml:"backend"` // http | openai
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Language string `yaml:"language"`
}

type Translation struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // ollama | openai | gemini
	URL     string `yaml:"url"`
	Model   string `yaml:"model"`
	Prompt  string `yaml:"prompt"`
	APIKey  string `yaml:"api_key"`
}

type Services struct {
	ASR         ASR         `yaml:"asr"`
	NLP         Service     `yaml:"nlp"`
	Punctuation Service     `yaml:"punctuation"`
	Translation Translation `yaml:"translation"`
	TimeoutSec  int         `yaml:"timeout_seconds"`
}

type Audio struct {
	SampleRate int    `yaml:"sample_rate"`
	Decoder    string `yaml:"decoder"` // ffmpeg | wav
	FFmpeg     string `yaml:"ffmpeg"`
	TmpDir     string `yaml:"tmp_dir"`
}

type Runtime struct {
	TrailingEnabled       bool    `yaml:"trailing_enabled"`
	TrailingBufferSeconds float64 `yaml:"trailing_buffer_seconds"`
}

type Output struct {
	Backend  string `yaml:"backend"` // local | s3
	Dir      string `yaml:"dir"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type Root struct {
	Pipeline struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		LogLvl    string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"pipeline"`
	Runtime        Runtime  `yaml:"runtime"`
	Audio          Audio    `yaml:"audio"`
	Services       Services `yaml:"services"`
	Postprocessing struct {
		SentenceGap float64 `yaml:"sentence_gap"`
	} `yaml:"postprocessing"`
	Output  Output `yaml:"output"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

func Default() *Root {
	var c Root
	c.Pipeline.Name = "speech-tagger"
	c.Pipeline.LogLvl = "info"
	c.Pipeline.LogFormat = "text"
	c.Runtime.TrailingBufferSeconds = 30
	c.Audio.SampleRate = 16000
	c.Audio.Decoder = "ffmpeg"
	c.Audio.FFmpeg = "ffmpeg"
	c.Services.ASR.Backend = "http"
	c.Services.ASR.URL = "http://localhost:8001"
	c.Services.Translation.Backend = "ollama"
	c.Services.TimeoutSec = 60
	c.Postprocessing.SentenceGap = 1.0
	c.Output.Backend = "local"
	c.Output.Dir = "tags"
	return &c
}

// Load reads path, or the first file found on the CONFIG_ENV guess list
// when path is empty, on top of Default. No file at all is not an error.
func Load(path string) (*Root, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		err := decodeFile(p, cfg)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// ApplyOverride merges a JSON object onto c. Keys absent from the override
// keep their current value; unknown keys are rejected.
func (c *Root) ApplyOverride(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	next := *c
	dec := yaml.NewDecoder(strings.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("%w: override: %v", ErrInvalid, err)
	}
	*c = next
	return nil
}

func (c *Root) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Runtime.TrailingEnabled && c.Runtime.TrailingBufferSeconds <= 0 {
		bad("runtime.trailing_buffer_seconds must be positive, got %v", c.Runtime.TrailingBufferSeconds)
	}
	if c.Audio.SampleRate <= 0 {
		bad("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	switch c.Audio.Decoder {
	case "ffmpeg", "wav":
	default:
		bad("audio.decoder %q", c.Audio.Decoder)
	}
	if c.Postprocessing.SentenceGap < 0 {
		bad("postprocessing.sentence_gap must not be negative")
	}

	asr := c.Services.ASR
	switch asr.Backend {
	case "http":
		if asr.URL == "" {
			bad("services.asr.url is required for the http backend")
		}
	case "openai":
		if asr.APIKey == "" && asr.BaseURL == "" {
			bad("services.asr.api_key or base_url is required for the openai backend")
		}
	default:
		bad("services.asr.backend %q", asr.Backend)
	}

	if tr := c.Services.Translation; tr.Enabled {
		switch tr.Backend {
		case "ollama":
			if tr.URL == "" || tr.Model == "" {
				bad("services.translation url and model are required for ollama")
			}
		case "openai":
			if tr.Model == "" {
				bad("services.translation.model is required for openai")
			}
		case "gemini":
			if tr.APIKey == "" {
				bad("services.translation.api_key is required for gemini")
			}
		default:
			bad("services.translation.backend %q", tr.Backend)
		}
		if tr.Prompt == "" {
			bad("services.translation.prompt is required when translation is enabled")
		}
	}

	switch c.Output.Backend {
	case "local":
		if c.Output.Dir == "" {
			bad("output.dir is required")
		}
	case "s3":
		if c.Output.Bucket == "" {
			bad("output.bucket is required for s3")
		}
	default:
		bad("output.backend %q", c.Output.Backend)
	}
	return errors.Join(errs...)
}

func (c *Root) Tagger() orchestrator.Config {
	return orchestrator.Config{
		TrailingEnabled:       c.Runtime.TrailingEnabled,
		TrailingBufferSeconds: c.Runtime.TrailingBufferSeconds,
	}
}

func (c *Root) Timeout() time.Duration { return DurSeconds(c.Services.TimeoutSec) }

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }

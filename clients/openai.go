package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/speech"
)

const DefaultOpenAIASRModel = "whisper-1"

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	c := openai.NewClient(opts...)
	return &c
}

// OpenAIRecognizer transcribes through the audio transcription endpoint with
// word timestamps.
type OpenAIRecognizer struct {
	client   *openai.Client
	model    string
	language string
	tmpDir   string
}

func NewOpenAIRecognizer(apiKey, baseURL, model, language, tmpDir string) *OpenAIRecognizer {
	if model == "" {
		model = DefaultOpenAIASRModel
	}
	return &OpenAIRecognizer{
		client:   newOpenAIClient(apiKey, baseURL),
		model:    model,
		language: language,
		tmpDir:   tmpDir,
	}
}

type verboseTranscript struct {
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

func (o *OpenAIRecognizer) Recognize(ctx context.Context, w audio.Waveform) ([]speech.Word, error) {
	if len(w.Samples) == 0 {
		return nil, nil
	}
	path, err := audio.WriteTempWAV(o.tmpDir, w)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   openai.File(f, "audio.wav", "audio/wav"),
		Model:                  openai.AudioModel(o.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if o.language != "" {
		params.Language = openai.String(o.language)
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	var vt verboseTranscript
	if err := json.Unmarshal([]byte(resp.RawJSON()), &vt); err != nil {
		return nil, fmt.Errorf("openai transcription decode: %w", err)
	}
	words := make([]speech.Word, 0, len(vt.Words))
	for _, wd := range vt.Words {
		text := strings.TrimSpace(wd.Word)
		if text == "" {
			continue
		}
		words = append(words, speech.Word{Text: text, End: wd.End})
	}
	return words, nil
}

// ChatTranslator translates with a chat completion. Any OpenAI-compatible
// server works, including Ollama's /v1 endpoint.
type ChatTranslator struct {
	client *openai.Client
	model  string
}

func NewChatTranslator(apiKey, baseURL, model string) *ChatTranslator {
	return &ChatTranslator{client: newOpenAIClient(apiKey, baseURL), model: model}
}

func (c *ChatTranslator) Translate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(0),
		Seed:        openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion without choices", speech.ErrMalformedPayload)
	}
	return resp.Choices[0].Message.Content, nil
}

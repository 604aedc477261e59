package speech

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/maastricht-university/speech-tagger/tags"
)

// BuildPrompt asks for a JSON object so the answer can be pulled out of
// chatty completions.
func BuildPrompt(instruction, text string) string {
	return instruction + "\n" + text + "\n" + `Output ONLY json: {"translation": "<Translation>"}`
}

// ParseTranslation extracts the translation from a completion containing a
// {"translation": ...} object, repairing broken JSON where it can.
func ParseTranslation(raw string) (string, error) {
	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i < 0 || j < i {
		return "", fmt.Errorf("%w: no json object in %q", ErrMalformedPayload, raw)
	}
	var out struct {
		Translation *string `json:"translation"`
	}
	if err := unmarshalJSON(raw[i:j+1], &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if out.Translation == nil {
		return "", fmt.Errorf("%w: missing translation in %q", ErrMalformedPayload, raw)
	}
	return *out.Translation, nil
}

func unmarshalJSON(data string, v any) error {
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(data)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// Align spreads target words evenly across the span of the source words.
// Each word gets a point tag.
func Align(src []Word, target []string) []tags.Tag {
	if len(src) == 0 || len(target) == 0 {
		return nil
	}
	first, last := src[0].End, src[len(src)-1].End
	step := (last - first) / float64(len(target))
	out := make([]tags.Tag, len(target))
	for i, w := range target {
		at := first + float64(i)*step
		out[i] = tags.Tag{StartTime: at, EndTime: at, Text: w}
	}
	return out
}

// PointTags maps each recognized word to a tag starting and ending at the
// word's end time.
func PointTags(words []Word) []tags.Tag {
	out := make([]tags.Tag, len(words))
	for i, w := range words {
		out[i] = tags.Tag{StartTime: w.End, EndTime: w.End, Text: w.Text}
	}
	return out
}

func joinWords(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

package speech

import (
	"context"
	"strings"
	"unicode"

	"github.com/maastricht-university/speech-tagger/tags"
)

// SentenceCase terminates unterminated text with a period and upper-cases
// the first letter of every sentence.
type SentenceCase struct{}

func (SentenceCase) Correct(_ context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}
	if !tags.IsSentenceEnd(text) {
		text += "."
	}
	r := []rune(text)
	for i := range r {
		if i == 0 || (i > 1 && isDelim(r[i-2])) {
			r[i] = unicode.ToUpper(r[i])
		}
	}
	return string(r), nil
}

func isDelim(r rune) bool { return r == '.' || r == '?' || r == '!' }

// Acronyms are proper nouns written in upper case.
var Acronyms = map[string]bool{
	"us": true, "uk": true, "usa": true, "dc": true, "nyc": true, "la": true, "sf": true,
	"nba": true, "nfl": true, "mlb": true, "ncaa": true, "nasa": true, "fbi": true,
	"cia": true, "nypd": true, "lapd": true,
}

// Token is one unit of a part-of-speech tagged sentence.
type Token struct {
	Text       string `json:"text"`
	POS        string `json:"pos"`
	Whitespace string `json:"whitespace"`
}

// CapitalizeTokens rebuilds a sentence with proper nouns and the pronoun "i"
// capitalized.
func CapitalizeTokens(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch {
		case t.POS == "PROPN" && Acronyms[t.Text]:
			b.WriteString(strings.ToUpper(t.Text))
		case t.POS == "PROPN":
			b.WriteString(capitalize(t.Text))
		case t.Text == "i" || strings.HasPrefix(t.Text, "i'"):
			b.WriteString(capitalize(t.Text))
		default:
			b.WriteString(t.Text)
		}
		b.WriteString(t.Whitespace)
	}
	return b.String()
}

func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}

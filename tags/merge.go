package tags

import "strings"

// IsSentenceEnd reports whether word closes a sentence.
func IsSentenceEnd(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "?") || strings.HasSuffix(word, "!")
}

// MergeSentences joins word tags into sentence tags. A sentence closes at the
// first word ending in '.', '?' or '!'; trailing words without terminal
// punctuation form a final sentence.
func MergeSentences(words []Tag) []Tag {
	if len(words) == 0 {
		return nil
	}
	var (
		out   []Tag
		acc   []string
		start = words[0].StartTime
	)
	for i, w := range words {
		acc = append(acc, w.Text)
		if !IsSentenceEnd(w.Text) {
			continue
		}
		out = append(out, Tag{StartTime: start, EndTime: w.EndTime, Text: strings.Join(acc, " ")})
		acc = acc[:0]
		if i+1 < len(words) {
			start = words[i+1].StartTime
		}
	}
	if len(acc) > 0 {
		out = append(out, Tag{StartTime: start, EndTime: words[len(words)-1].EndTime, Text: strings.Join(acc, " ")})
	}
	return out
}

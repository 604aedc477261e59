// Package tags holds the time-stamped text units produced by the tagger and
// the pure transforms over them.
package tags

import "path/filepath"

// Track is the label carried by every augmented tag.
const Track = "auto_captions"

// Tag is a word- or sentence-level text span. Times are in whatever unit the
// recognizer produced; nothing in this module rescales them.
type Tag struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

type Augmented struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Text        string  `json:"text"`
	SourceMedia string  `json:"source_media"`
	Track       string  `json:"track"`
}

// Augment attaches provenance to each tag. source may be a full path; only its
// basename is recorded.
func Augment(ts []Tag, source string) []Augmented {
	media := filepath.Base(source)
	out := make([]Augmented, 0, len(ts))
	for _, t := range ts {
		out = append(out, Augmented{
			StartTime:   t.StartTime,
			EndTime:     t.EndTime,
			Text:        t.Text,
			SourceMedia: media,
			Track:       Track,
		})
	}
	return out
}

package orchestrator

import "github.com/maastricht-university/speech-tagger/audio"

// Buffer accumulates decoded segments for the trailing window. The zero value
// is empty and ready to use. It has no locking; one tagger owns one buffer.
type Buffer struct {
	segments []audio.Waveform
	names    []string
	total    float64
}

// Add appends a segment. There is no upper bound: one long file may push the
// total far past any threshold.
func (b *Buffer) Add(w audio.Waveform, name string, duration float64) {
	b.segments = append(b.segments, w)
	b.names = append(b.names, name)
	b.total += duration
}

func (b *Buffer) IsReady(threshold float64) bool { return b.total >= threshold }
func (b *Buffer) IsEmpty() bool                  { return len(b.segments) == 0 }
func (b *Buffer) Len() int                       { return len(b.segments) }
func (b *Buffer) Duration() float64              { return b.total }

// Names returns the buffered file names in arrival order.
func (b *Buffer) Names() []string { return append([]string(nil), b.names...) }

// FirstName is the file that opened the window, or "" when empty.
func (b *Buffer) FirstName() string {
	if len(b.names) == 0 {
		return ""
	}
	return b.names[0]
}

// Combined concatenates the segments in arrival order. Segments with a
// different channel count or rate are an error.
func (b *Buffer) Combined() (audio.Waveform, error) {
	return audio.Concat(b.segments...)
}

// Clear swaps in a fresh empty buffer.
func (b *Buffer) Clear() { *b = Buffer{} }

// Take returns the current contents and leaves b empty.
func (b *Buffer) Take() Buffer {
	w := *b
	*b = Buffer{}
	return w
}

package audio

import (
	"errors"
	"fmt"
)

// DefaultSampleRate is the rate every decoder produces unless configured
// otherwise.
const DefaultSampleRate = 16000

var (
	ErrIncompatible = errors.New("audio: incompatible waveforms")
	ErrInvalidWAV   = errors.New("audio: invalid wav file")
)

// Waveform is interleaved PCM normalized to [-1, 1].
type Waveform struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames returns the number of samples per channel.
func (w Waveform) Frames() int {
	if w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration returns the length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.SampleRate)
}

// Concat joins waveforms in order. All inputs must share the channel count
// and sample rate of the first; a mismatch is an error, never a truncation.
func Concat(ws ...Waveform) (Waveform, error) {
	if len(ws) == 0 {
		return Waveform{}, nil
	}
	first := ws[0]
	n := 0
	for i, w := range ws {
		if w.Channels != first.Channels {
			return Waveform{}, fmt.Errorf("%w: segment %d has %d channels, want %d", ErrIncompatible, i, w.Channels, first.Channels)
		}
		if w.SampleRate != first.SampleRate {
			return Waveform{}, fmt.Errorf("%w: segment %d is %d Hz, want %d Hz", ErrIncompatible, i, w.SampleRate, first.SampleRate)
		}
		n += len(w.Samples)
	}
	out := Waveform{SampleRate: first.SampleRate, Channels: first.Channels, Samples: make([]float32, 0, n)}
	for _, w := range ws {
		out.Samples = append(out.Samples, w.Samples...)
	}
	return out, nil
}

// ToMono averages channels into a single one.
func ToMono(w Waveform) Waveform {
	if w.Channels <= 1 {
		return w
	}
	frames := w.Frames()
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < w.Channels; c++ {
			sum += w.Samples[i*w.Channels+c]
		}
		out[i] = sum / float32(w.Channels)
	}
	return Waveform{SampleRate: w.SampleRate, Channels: 1, Samples: out}
}

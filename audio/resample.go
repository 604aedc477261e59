package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts w to rate. Waveforms already at rate are returned as is.
func Resample(w Waveform, rate int) (Waveform, error) {
	if rate <= 0 {
		return Waveform{}, fmt.Errorf("audio: invalid target rate %d", rate)
	}
	if w.SampleRate == rate || len(w.Samples) == 0 {
		w.SampleRate = rate
		return w, nil
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(w.SampleRate),
		OutputRate: float64(rate),
		Channels:   w.Channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to create resampler: %w", err)
	}

	in := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		in[i] = float64(s)
	}
	res, err := r.Process(in)
	if err != nil {
		return Waveform{}, fmt.Errorf("resample error: %w", err)
	}
	// the filter holds back its delay line until flushed
	tail, err := r.Flush()
	if err != nil {
		return Waveform{}, fmt.Errorf("resample flush: %w", err)
	}
	res = append(res, tail...)
	ch := max(w.Channels, 1)
	if want := expectedLen(len(w.Samples)/ch, w.SampleRate, rate) * ch; len(res) > want {
		res = res[:want]
	}

	out := make([]float32, len(res))
	for i, s := range res {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		out[i] = float32(s)
	}
	return Waveform{SampleRate: rate, Channels: w.Channels, Samples: out}, nil
}

// Normalize downmixes to mono and resamples to rate.
func Normalize(w Waveform, rate int) (Waveform, error) {
	return Resample(ToMono(w), rate)
}

func expectedLen(frames, from, to int) int {
	return int(math.Round(float64(frames) * float64(to) / float64(from)))
}

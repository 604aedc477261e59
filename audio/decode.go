package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// WAVDecoder reads wav files directly, without ffmpeg.
type WAVDecoder struct {
	SampleRate int
}

func (d WAVDecoder) Decode(_ context.Context, path string) (Waveform, float64, error) {
	w, err := ReadWAV(path)
	if err != nil {
		return Waveform{}, 0, err
	}
	w, err = Normalize(w, rateOrDefault(d.SampleRate))
	if err != nil {
		return Waveform{}, 0, err
	}
	return w, w.Duration(), nil
}

// FFmpeg decodes any container ffmpeg understands into a mono wav at
// SampleRate, then loads it.
type FFmpeg struct {
	Bin        string
	TmpDir     string
	SampleRate int
}

func (d FFmpeg) Decode(ctx context.Context, path string) (Waveform, float64, error) {
	if _, err := os.Stat(path); err != nil {
		return Waveform{}, 0, err
	}
	bin := d.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	rate := rateOrDefault(d.SampleRate)

	tmp, err := os.CreateTemp(d.TmpDir, "speech-tagger-*.wav")
	if err != nil {
		return Waveform{}, 0, err
	}
	out := tmp.Name()
	tmp.Close()
	defer os.Remove(out)

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, bin,
		"-y", "-loglevel", "error",
		"-i", path,
		"-ac", "1", "-ar", fmt.Sprint(rate),
		"-f", "wav",
		out,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return Waveform{}, 0, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(b)))
	}

	w, err := ReadWAV(out)
	if err != nil {
		return Waveform{}, 0, err
	}
	w, err = Normalize(w, rate)
	if err != nil {
		return Waveform{}, 0, err
	}
	return w, w.Duration(), nil
}

func rateOrDefault(rate int) int {
	if rate <= 0 {
		return DefaultSampleRate
	}
	return rate
}

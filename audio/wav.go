package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// ReadWAV loads an integer PCM wav file.
func ReadWAV(path string) (Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return Waveform{}, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

func DecodeWAV(r io.ReadSeeker) (Waveform, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Waveform{}, ErrInvalidWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("wav decode: %w", err)
	}
	depth := int(d.BitDepth)
	if depth <= 0 {
		depth = buf.SourceBitDepth
	}
	if depth <= 1 || depth > 32 {
		return Waveform{}, fmt.Errorf("%w: bit depth %d", ErrInvalidWAV, depth)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return Waveform{}, fmt.Errorf("%w: missing format", ErrInvalidWAV)
	}

	// 8-bit PCM is unsigned with silence at 128; wider depths are signed.
	var offset int
	if depth == 8 {
		offset = 128
	}
	scale := float32(int64(1) << (depth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v-offset) / scale
	}
	return Waveform{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Samples:    samples,
	}, nil
}

// WriteWAV encodes w as 16-bit PCM.
func WriteWAV(out io.WriteSeeker, w Waveform) error {
	if w.Channels <= 0 || w.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrIncompatible, w.Channels, w.SampleRate)
	}
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		data[i] = int(s * 32767)
	}
	enc := wav.NewEncoder(out, w.SampleRate, 16, w.Channels, pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.Channels, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	return enc.Close()
}

// WriteTempWAV writes w to a new file in dir and returns its path. The caller
// removes the file.
func WriteTempWAV(dir string, w Waveform) (string, error) {
	f, err := os.CreateTemp(dir, "speech-tagger-*.wav")
	if err != nil {
		return "", err
	}
	if err := WriteWAV(f, w); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-tagger/metrics"
	"github.com/maastricht-university/speech-tagger/store"
	"github.com/maastricht-university/speech-tagger/tags"
)

// Tagger turns input files into raw tag artifacts and, in trailing mode,
// sentence-level artifacts over a rolling window of audio. Calls must be
// serialized; one Tagger serves one logical stream.
type Tagger struct {
	cfg     Config
	dec     Decoder
	model   Transcriber
	out     store.FileStore
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	buf *Buffer // nil unless trailing mode is on
}

type Option func(*Tagger)

func WithLogger(l logrus.FieldLogger) Option { return func(t *Tagger) { t.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(t *Tagger) { t.metrics = m } }

func NewTagger(c Config, dec Decoder, model Transcriber, out store.FileStore, opts ...Option) *Tagger {
	t := &Tagger{cfg: c, dec: dec, model: model, out: out, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(t)
	}
	if c.TrailingEnabled {
		t.buf = &Buffer{}
	}
	return t
}

// Buffered returns the seconds of audio waiting in the trailing buffer.
func (t *Tagger) Buffered() float64 {
	if t.buf == nil {
		return 0
	}
	return t.buf.Duration()
}

// Tag processes one file: decode, transcribe, write raw tags, then feed the
// trailing buffer and flush it once it holds enough audio. A failure leaves
// the buffered audio of earlier files untouched.
func (t *Tagger) Tag(ctx context.Context, path string) (Report, error) {
	rep := Report{File: path, Buffered: t.Buffered()}
	log := t.log.WithField("file", path)

	wave, dur, err := t.dec.Decode(ctx, path)
	if err != nil {
		t.metrics.File("decode_error")
		return rep, &DecodeError{Path: path, Err: err}
	}

	raw, err := t.model.Transcribe(ctx, wave)
	if err != nil {
		t.metrics.File("transcribe_error")
		return rep, fmt.Errorf("transcribe %s: %w", path, err)
	}
	rep.RawTags = len(raw)

	if len(raw) > 0 {
		if err := writeJSON(ctx, t.out, RawName(path), raw); err != nil {
			t.metrics.File("write_error")
			return rep, fmt.Errorf("write raw tags for %s: %w", path, err)
		}
		t.metrics.Raw(len(raw))
		log.WithField("tags", len(raw)).Info("wrote raw tags")
	} else {
		log.Info("no speech detected")
	}
	t.metrics.File("ok")

	if t.buf == nil {
		return rep, nil
	}

	// silent files still count towards the window
	t.buf.Add(wave, path, dur)
	t.metrics.SetBuffered(t.buf.Duration())
	log.WithFields(logrus.Fields{
		"duration": dur,
		"buffered": t.buf.Duration(),
		"segments": t.buf.Len(),
	}).Debug("buffered audio")

	if t.buf.IsReady(t.cfg.TrailingBufferSeconds) {
		rep.Flush, err = t.flush(ctx)
	}
	rep.Buffered = t.buf.Duration()
	return rep, err
}

// Finalize flushes whatever is left in the trailing buffer, below threshold
// or not. It is a no-op when trailing mode is off or the buffer is empty.
func (t *Tagger) Finalize(ctx context.Context) (FlushResult, error) {
	if t.buf == nil {
		return FlushResult{Status: FlushNone}, nil
	}
	return t.flush(ctx)
}

// flush drains the buffer before doing any work, so a failing flush still
// leaves it empty for the next window.
func (t *Tagger) flush(ctx context.Context) (FlushResult, error) {
	if t.buf.IsEmpty() {
		return FlushResult{Status: FlushNone}, nil
	}
	win := t.buf.Take()
	t.metrics.SetBuffered(0)

	res := FlushResult{
		Source:   win.FirstName(),
		Segments: win.Len(),
		Duration: win.Duration(),
	}
	log := t.log.WithFields(logrus.Fields{
		"source_media": res.Source,
		"segments":     res.Segments,
		"duration":     res.Duration,
	})

	fail := func(err error) (FlushResult, error) {
		res.Status = FlushFailed
		t.metrics.Flush(res.Status.String(), 0)
		log.WithError(err).Error("flush failed")
		return res, err
	}

	combined, err := win.Combined()
	if err != nil {
		return fail(fmt.Errorf("combine window from %s: %w", res.Source, err))
	}
	words, err := t.model.Transcribe(ctx, combined)
	if err != nil {
		return fail(fmt.Errorf("transcribe window from %s: %w", res.Source, err))
	}
	if len(words) == 0 {
		res.Status = FlushNoSpeech
		t.metrics.Flush(res.Status.String(), 0)
		log.Warn("combined transcription empty, discarding buffered audio")
		return res, nil
	}

	sentences := tags.Augment(tags.MergeSentences(words), res.Source)
	if err := writeJSON(ctx, t.out, PrettifiedName(res.Source), sentences); err != nil {
		return fail(fmt.Errorf("write prettified tags for %s: %w", res.Source, err))
	}

	res.Status = FlushWritten
	res.Sentences = len(sentences)
	t.metrics.Flush(res.Status.String(), res.Sentences)
	log.WithField("sentences", res.Sentences).Info("wrote prettified tags")
	return res, nil
}

package speech

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/tags"
)

// DefaultSentenceGap is the largest gap, in recognizer time units, between
// consecutive word starts that still belong to one correction chunk.
const DefaultSentenceGap = 1.0

type Model struct {
	rec    Recognizer
	tr     Translator
	prompt string
	cor    Corrector
	gap    float64
	log    logrus.FieldLogger
}

type Option func(*Model)

func WithTranslator(tr Translator, prompt string) Option {
	return func(m *Model) { m.tr, m.prompt = tr, prompt }
}

func WithCorrector(c Corrector) Option { return func(m *Model) { m.cor = c } }

func WithSentenceGap(gap float64) Option { return func(m *Model) { m.gap = gap } }

func WithLogger(l logrus.FieldLogger) Option { return func(m *Model) { m.log = l } }

func New(rec Recognizer, opts ...Option) *Model {
	m := &Model{rec: rec, gap: DefaultSentenceGap, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Transcribe recognizes w and returns word tags, translated and corrected
// when those stages are configured. A malformed translator or corrector
// payload is logged and yields no tags.
func (m *Model) Transcribe(ctx context.Context, w audio.Waveform) ([]tags.Tag, error) {
	words, err := m.rec.Recognize(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		m.log.WithField("duration", w.Duration()).Info("no words detected")
		return nil, nil
	}

	ts := PointTags(words)
	if m.tr != nil {
		ts, err = m.translate(ctx, words)
		if err != nil || len(ts) == 0 {
			return nil, m.swallow(err, "translation")
		}
	}
	if m.cor != nil {
		ts, err = m.prettify(ctx, ts)
		if err != nil {
			return nil, m.swallow(err, "correction")
		}
	}
	return ts, nil
}

func (m *Model) swallow(err error, stage string) error {
	if errors.Is(err, ErrMalformedPayload) {
		m.log.WithError(err).WithField("stage", stage).Error("bad payload, dropping tags")
		return nil
	}
	return err
}

func (m *Model) translate(ctx context.Context, words []Word) ([]tags.Tag, error) {
	raw, err := m.tr.Translate(ctx, BuildPrompt(m.prompt, joinWords(words)))
	if err != nil {
		return nil, err
	}
	text, err := ParseTranslation(raw)
	if err != nil {
		return nil, err
	}
	return Align(words, strings.Fields(text)), nil
}

// prettify corrects runs of closely spaced words together and writes the
// corrected words back over the originals, position by position.
func (m *Model) prettify(ctx context.Context, ts []tags.Tag) ([]tags.Tag, error) {
	if len(ts) == 0 {
		return ts, nil
	}
	chunks := []string{ts[0].Text}
	last := ts[0].StartTime
	for _, t := range ts[1:] {
		if t.StartTime-last > m.gap {
			chunks = append(chunks, t.Text)
		} else {
			chunks[len(chunks)-1] += " " + t.Text
		}
		last = t.StartTime
	}

	fixed := make([]string, 0, len(chunks))
	for _, c := range chunks {
		s, err := m.cor.Correct(ctx, c)
		if err != nil {
			return nil, err
		}
		fixed = append(fixed, s)
	}
	words := strings.Fields(strings.Join(fixed, " "))

	out := append([]tags.Tag(nil), ts...)
	for i := range out {
		if i >= len(words) {
			break
		}
		out[i].Text = words[i]
	}
	return out, nil
}

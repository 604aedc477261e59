package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/speech-tagger/audio"
	"github.com/maastricht-university/speech-tagger/clients"
	cfg "github.com/maastricht-university/speech-tagger/config"
	"github.com/maastricht-university/speech-tagger/metrics"
	"github.com/maastricht-university/speech-tagger/orchestrator"
	"github.com/maastricht-university/speech-tagger/speech"
	"github.com/maastricht-university/speech-tagger/store"
)

const envPrefix = "SPEECH_TAGGER"

var errFailures = errors.New("some files failed")

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "speech-tagger [flags] <audio files...>",
		Short: "Tag speech in audio files with timed captions",
		Long: `Transcribe audio files into word-level caption tags. With trailing mode
on, audio is also buffered across files and flushed as sentence-level tags
once enough has accumulated.

With --live, file paths are read line by line from stdin until EOF or
interrupt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, cmd.InOrStdin(), args)
		},
	}

	f := cmd.Flags()
	f.String("config-file", "", "YAML config file (default: config/$CONFIG_ENV/config.yaml, then config.yaml)")
	f.String("config", "", "JSON object merged over the loaded config")
	f.Bool("live", false, "read file paths from stdin")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("output-dir", "", "directory for tag artifacts")
	f.Bool("trailing", false, "buffer audio across files and emit sentence tags")
	f.Float64("trailing-buffer", 0, "seconds of audio to buffer before a flush")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(f)
	return cmd
}

// loadConfig layers file, JSON override, then flags and environment.
func loadConfig(v *viper.Viper) (*cfg.Root, error) {
	conf, err := cfg.Load(v.GetString("config-file"))
	if err != nil {
		return nil, err
	}
	if err := conf.ApplyOverride(v.GetString("config")); err != nil {
		return nil, err
	}
	if v.IsSet("log-level") {
		conf.Pipeline.LogLvl = v.GetString("log-level")
	}
	if v.IsSet("output-dir") {
		conf.Output.Dir = v.GetString("output-dir")
	}
	if v.IsSet("trailing") {
		conf.Runtime.TrailingEnabled = v.GetBool("trailing")
	}
	if v.IsSet("trailing-buffer") {
		conf.Runtime.TrailingBufferSeconds = v.GetFloat64("trailing-buffer")
	}
	if v.IsSet("metrics-addr") {
		conf.Metrics.Addr = v.GetString("metrics-addr")
	}
	return conf, conf.Validate()
}

func newLogger(conf *cfg.Root) (*logrus.Logger, error) {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)
	if conf.Pipeline.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func run(ctx context.Context, v *viper.Viper, stdin io.Reader, args []string) error {
	conf, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(conf)
	if err != nil {
		return err
	}
	log := logger.WithField("run_id", uuid.NewString())

	live := v.GetBool("live")
	if !live && len(args) == 0 {
		return errors.New("no input files; pass paths or use --live")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if conf.Metrics.Addr != "" {
		srv := &http.Server{Addr: conf.Metrics.Addr, Handler: metricsMux(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tagger, err := buildTagger(ctx, conf, log, m)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"trailing": conf.Runtime.TrailingEnabled,
		"buffer":   conf.Runtime.TrailingBufferSeconds,
		"backend":  conf.Services.ASR.Backend,
		"live":     live,
	}).Info("speech tagger starting")

	paths := make(chan string)
	go func() {
		defer close(paths)
		if live {
			feedLines(ctx, stdin, paths)
			return
		}
		for _, p := range args {
			select {
			case paths <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	failed := 0
loop:
	for {
		var p string
		select {
		case next, ok := <-paths:
			if !ok {
				break loop
			}
			p = next
		case <-ctx.Done():
			// stdin may still be blocked in live mode
			break loop
		}
		rep, err := tagger.Tag(ctx, p)
		if err != nil {
			failed++
			log.WithField("file", p).WithError(err).Error("tagging failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"file":     rep.File,
			"tags":     rep.RawTags,
			"buffered": rep.Buffered,
			"status":   rep.Flush.Status,
		}).Debug("file done")
	}

	// The run context may already be cancelled by a signal; the final
	// flush still gets to finish.
	res, ferr := tagger.Finalize(context.WithoutCancel(ctx))
	if ferr != nil {
		log.WithError(ferr).Error("finalize failed")
	} else if res.Status != orchestrator.FlushNone {
		log.WithFields(logrus.Fields{
			"status":       res.Status,
			"source_media": res.Source,
			"segments":     res.Segments,
			"sentences":    res.Sentences,
		}).Info("finalized")
	}

	switch {
	case ferr != nil:
		return ferr
	case failed > 0:
		return fmt.Errorf("%w: %d", errFailures, failed)
	}
	return nil
}

func feedLines(ctx context.Context, r io.Reader, out chan<- string) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return
		}
	}
}

func metricsMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	return mux
}

func buildTagger(ctx context.Context, conf *cfg.Root, log logrus.FieldLogger, m *metrics.Metrics) (*orchestrator.Tagger, error) {
	var dec orchestrator.Decoder
	switch conf.Audio.Decoder {
	case "wav":
		dec = audio.WAVDecoder{SampleRate: conf.Audio.SampleRate}
	default:
		dec = audio.FFmpeg{Bin: conf.Audio.FFmpeg, TmpDir: conf.Audio.TmpDir, SampleRate: conf.Audio.SampleRate}
	}

	model, err := buildModel(ctx, conf, log)
	if err != nil {
		return nil, err
	}
	out, err := buildStore(conf)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewTagger(conf.Tagger(), dec, model, out,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
	), nil
}

func buildModel(ctx context.Context, conf *cfg.Root, log logrus.FieldLogger) (*speech.Model, error) {
	h := clients.NewHTTP(conf.Timeout())
	svc := conf.Services

	var rec speech.Recognizer
	switch svc.ASR.Backend {
	case "openai":
		rec = clients.NewOpenAIRecognizer(svc.ASR.APIKey, svc.ASR.BaseURL, svc.ASR.Model, svc.ASR.Language, conf.Audio.TmpDir)
	default:
		rec = clients.NewASR(h, svc.ASR.URL, conf.Audio.TmpDir)
	}

	opts := []speech.Option{
		speech.WithLogger(log),
		speech.WithSentenceGap(conf.Postprocessing.SentenceGap),
	}

	if tr := svc.Translation; tr.Enabled {
		var t speech.Translator
		switch tr.Backend {
		case "openai":
			t = clients.NewChatTranslator(tr.APIKey, tr.URL, tr.Model)
		case "gemini":
			g, err := clients.NewGeminiTranslator(ctx, tr.APIKey, tr.Model)
			if err != nil {
				return nil, err
			}
			t = g
		default:
			t = clients.NewOllama(h, tr.URL, tr.Model)
		}
		opts = append(opts, speech.WithTranslator(t, tr.Prompt))
	}

	var chain speech.Chain
	if svc.NLP.URL != "" {
		chain = append(chain, clients.NewCapitalizer(h, svc.NLP.URL))
	}
	if svc.Punctuation.URL != "" {
		chain = append(chain, clients.NewPunctuator(h, svc.Punctuation.URL))
	}
	chain = append(chain, speech.SentenceCase{})
	opts = append(opts, speech.WithCorrector(chain))

	return speech.New(rec, opts...), nil
}

func buildStore(conf *cfg.Root) (store.FileStore, error) {
	o := conf.Output
	if o.Backend == "s3" {
		client := store.NewS3Client(store.S3Options{Region: o.Region, Endpoint: o.Endpoint})
		return store.NewS3(client, o.Bucket, o.Prefix), nil
	}
	return store.NewLocal(o.Dir)
}

//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"speechmark/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

// Process-wide model cache. Models are expensive to load, so each ggml file
// is loaded once and reused across requests; the recognizer itself stays
// stateless.
var (
	modelMu    sync.Mutex
	modelCache = map[string]whisper.Model{}
)

func loadModel(path string) (whisper.Model, error) {
	modelMu.Lock()
	defer modelMu.Unlock()
	if m, ok := modelCache[path]; ok {
		return m, nil
	}
	m, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	modelCache[path] = m
	return m, nil
}

type whisperRecognizer struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func newWhisperRecognizer(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	if cfg.ASR.ModelDir == "" {
		return nil, fmt.Errorf("asr.model_dir not configured")
	}
	return &whisperRecognizer{cfg: cfg, logger: logger}, nil
}

func (r *whisperRecognizer) Transcribe(ctx context.Context, samples []float32, sampleRate int, p config.RuntimeParams) (Result, error) {
	if sampleRate != whisper.SampleRate {
		return Result{}, fmt.Errorf("whisper backend needs %d Hz audio (got %d)", whisper.SampleRate, sampleRate)
	}
	path := filepath.Join(r.cfg.ASR.ModelDir, GGMLFileFor(p.ModelSize))
	model, err := loadModel(path)
	if err != nil {
		return Result{}, err
	}
	wctx, err := model.NewContext()
	if err != nil {
		return Result{}, err
	}
	lang := strings.TrimSpace(p.Language)
	if lang != "" && lang != "auto" {
		if err := wctx.SetLanguage(lang); err != nil {
			r.logger.Warnf("set language: %v", err)
		}
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, err
	}

	res := Result{Language: lang}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Result{}, err
		}
		sentence := Sentence{}
		for _, t := range seg.Tokens {
			text := strings.TrimSpace(t.Text)
			// skip whisper's special markers like [_BEG_]
			if text == "" || strings.HasPrefix(text, "[_") {
				continue
			}
			sentence.Tokens = append(sentence.Tokens, Token{
				Text:       text,
				Start:      t.Start.Milliseconds(),
				End:        t.End.Milliseconds(),
				Confidence: float64(t.P),
			})
		}
		if len(sentence.Tokens) > 0 {
			res.Sentences = append(res.Sentences, sentence)
		}
	}
	return res, nil
}

func (r *whisperRecognizer) Close() error {
	modelMu.Lock()
	defer modelMu.Unlock()
	var firstErr error
	for path, m := range modelCache {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(modelCache, path)
	}
	return firstErr
}

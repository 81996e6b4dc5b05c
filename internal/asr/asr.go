package asr

import (
	"context"
	"fmt"

	"speechmark/internal/config"

	"github.com/sirupsen/logrus"
)

// Token is a recognized word with its span in the source audio.
type Token struct {
	Text       string
	Start      int64 // milliseconds
	End        int64 // milliseconds
	Confidence float64
}

// Sentence groups consecutive tokens into one recognized utterance.
type Sentence struct {
	Tokens []Token
}

// Text joins the sentence's token texts with single spaces.
func (s Sentence) Text() string {
	n := 0
	for _, t := range s.Tokens {
		n += len(t.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, t := range s.Tokens {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, t.Text...)
	}
	return string(buf)
}

// Start returns the first token's start time, or 0 for an empty sentence.
func (s Sentence) Start() int64 {
	if len(s.Tokens) == 0 {
		return 0
	}
	return s.Tokens[0].Start
}

// End returns the latest token end time, or 0 for an empty sentence.
func (s Sentence) End() int64 {
	var end int64
	for _, t := range s.Tokens {
		if t.End > end {
			end = t.End
		}
	}
	return end
}

// Result is one inference run over one piece of audio.
type Result struct {
	Language  string
	Sentences []Sentence
}

// TokenCount returns the total number of tokens across sentences.
func (r Result) TokenCount() int {
	n := 0
	for _, s := range r.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// Shift moves every timestamp by offsetMS. Used to rebase chunk-relative
// times onto the source audio timeline.
func (r *Result) Shift(offsetMS int64) {
	for i := range r.Sentences {
		for j := range r.Sentences[i].Tokens {
			r.Sentences[i].Tokens[j].Start += offsetMS
			r.Sentences[i].Tokens[j].End += offsetMS
		}
	}
}

// Append merges another result's sentences into r.
func (r *Result) Append(other Result) {
	if r.Language == "" {
		r.Language = other.Language
	}
	r.Sentences = append(r.Sentences, other.Sentences...)
}

// Recognizer converts decoded audio into a timed transcription.
type Recognizer interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, p config.RuntimeParams) (Result, error)
	Close() error
}

// New returns the recognizer selected by config.
func New(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	switch cfg.ASR.Backend {
	case "runner":
		return newRunner(cfg, logger)
	case "whisper":
		return newWhisperRecognizer(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown asr.backend %q (want runner or whisper)", cfg.ASR.Backend)
	}
}

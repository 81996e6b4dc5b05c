package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"speechmark/internal/config"
	"speechmark/internal/media"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// runner shells out to a helper process (the model host) that prints a JSON
// transcription on stdout. The helper owns model loading and caching; one
// helper invocation handles one audio chunk.
type runner struct {
	cfg      *config.Config
	logger   *logrus.Logger
	baseArgs []string
}

func newRunner(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	if strings.TrimSpace(cfg.ASR.RunnerCommand) == "" {
		return nil, fmt.Errorf("asr.runner_command not configured")
	}
	args, err := shlex.Split(cfg.ASR.RunnerArgs)
	if err != nil {
		return nil, fmt.Errorf("parse asr.runner_args: %w", err)
	}
	return &runner{cfg: cfg, logger: logger, baseArgs: args}, nil
}

func (r *runner) Transcribe(ctx context.Context, samples []float32, sampleRate int, p config.RuntimeParams) (Result, error) {
	model, err := Lookup(p.ModelSize)
	if err != nil {
		return Result{}, err
	}

	dir, err := os.MkdirTemp(r.cfg.Paths.TmpDir, "speechmark-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warnf("remove temp dir: %v", err)
		}
	}()
	wavPath := filepath.Join(dir, "chunk.wav")
	if err := media.WriteWAV(wavPath, samples, sampleRate); err != nil {
		return Result{}, fmt.Errorf("write chunk wav: %w", err)
	}

	runCtx := ctx
	if r.cfg.ASR.TimeoutSec > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.ASR.TimeoutSec)*time.Second)
		defer cancel()
	}

	args := append([]string{}, r.baseArgs...)
	args = append(args,
		"--audio", wavPath,
		"--model", model.ID,
		"--revision", model.Revision,
		"--device", p.Device,
		"--language", p.Language,
		"--context-size", strconv.Itoa(p.ContextSize),
	)
	cmd := exec.CommandContext(runCtx, r.cfg.ASR.RunnerCommand, args...)
	cmd.Env = os.Environ()

	started := time.Now()
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return Result{}, fmt.Errorf("runner failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return Result{}, fmt.Errorf("run helper: %w", err)
	}
	r.logger.Debugf("runner finished in %.1fs (%d bytes out)", time.Since(started).Seconds(), len(out))

	return parseRunnerOutput(out)
}

func (r *runner) Close() error { return nil }

type runnerWord struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"` // seconds
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

type runnerSegment struct {
	Text  string  `json:"segment"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type runnerOutput struct {
	Language string          `json:"language"`
	Words    []runnerWord    `json:"words"`
	Segments []runnerSegment `json:"segments"`
}

func parseRunnerOutput(data []byte) (Result, error) {
	var parsed runnerOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse runner output: %w", err)
	}
	return Result{
		Language:  parsed.Language,
		Sentences: groupWords(parsed.Words, parsed.Segments),
	}, nil
}

// groupWords assigns words to sentences using the segment spans. A word goes
// to the current segment until its start passes the segment end; with no
// segments at all, the whole word list is one sentence.
func groupWords(words []runnerWord, segments []runnerSegment) []Sentence {
	if len(words) == 0 {
		return nil
	}
	toToken := func(w runnerWord) Token {
		return Token{
			Text:       w.Word,
			Start:      int64(w.Start * 1000),
			End:        int64(w.End * 1000),
			Confidence: w.Confidence,
		}
	}
	if len(segments) == 0 {
		s := Sentence{Tokens: make([]Token, 0, len(words))}
		for _, w := range words {
			s.Tokens = append(s.Tokens, toToken(w))
		}
		return []Sentence{s}
	}
	var out []Sentence
	cur := Sentence{}
	seg := 0
	for _, w := range words {
		for seg < len(segments)-1 && w.Start >= segments[seg].End {
			if len(cur.Tokens) > 0 {
				out = append(out, cur)
				cur = Sentence{}
			}
			seg++
		}
		cur.Tokens = append(cur.Tokens, toToken(w))
	}
	if len(cur.Tokens) > 0 {
		out = append(out, cur)
	}
	return out
}

// Package app orchestrates one annotation request: locate source media in
// the container, extract and chunk audio, run the recognizer, and write the
// aligned annotations into a new view per source document.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"speechmark/internal/align"
	"speechmark/internal/asr"
	"speechmark/internal/config"
	"speechmark/internal/media"
	"speechmark/internal/mmif"

	"github.com/sirupsen/logrus"
)

// Annotator processes containers. It holds the recognizer for the process
// lifetime; every request is otherwise independent.
type Annotator struct {
	cfg    *config.Config
	logger *logrus.Logger
	rec    asr.Recognizer
}

// New builds an Annotator with the configured recognizer backend.
func New(cfg *config.Config, logger *logrus.Logger) (*Annotator, error) {
	rec, err := asr.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Annotator{cfg: cfg, logger: logger, rec: rec}, nil
}

// Close releases the recognizer.
func (a *Annotator) Close() error {
	return a.rec.Close()
}

// Annotate appends one view per audio/video document in the container. On
// failure the offending view carries an error instead of annotations and the
// error is returned; earlier documents' views are left intact.
func (a *Annotator) Annotate(ctx context.Context, m *mmif.Mmif, p config.RuntimeParams) error {
	docs := m.DocumentsByType(mmif.AudioDocument, mmif.VideoDocument)
	if len(docs) == 0 {
		return fmt.Errorf("container has no audio or video documents")
	}
	for _, doc := range docs {
		view := m.NewView()
		view.Sign(Identifier+"/"+Version, p.Map())
		view.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
		if err := a.annotateDocument(ctx, doc, view, p); err != nil {
			view.SetError(err.Error())
			return fmt.Errorf("document %s: %w", doc.Properties.ID, err)
		}
	}
	return nil
}

func (a *Annotator) annotateDocument(ctx context.Context, doc *mmif.Document, view *mmif.View, p config.RuntimeParams) error {
	src := doc.LocationPath()
	if src == "" {
		return fmt.Errorf("document has no location")
	}
	a.logger.Infof("transcribing %s (model %s)", src, p.ModelSize)

	wavPath, err := media.ExtractAudio(ctx, a.cfg.Media.FFmpegPath, src, a.cfg.Paths.TmpDir, a.cfg.Media.SampleRate)
	if err != nil {
		return err
	}
	if !a.cfg.Media.KeepExtracts {
		defer func() {
			if err := os.Remove(wavPath); err != nil {
				a.logger.Warnf("remove extracted audio: %v", err)
			}
		}()
	}

	samples, rate, err := media.ReadWAV(wavPath)
	if err != nil {
		return err
	}
	if rate != a.cfg.Media.SampleRate {
		samples = media.ResampleLinear(samples, rate, a.cfg.Media.SampleRate)
		rate = a.cfg.Media.SampleRate
	}

	chunker, err := media.NewChunker(a.cfg, rate, p.ChunkSec)
	if err != nil {
		return err
	}
	chunks := chunker.Split(samples)
	a.logger.Debugf("split %d samples into %d chunks", len(samples), len(chunks))

	var combined asr.Result
	for _, ch := range chunks {
		res, err := a.rec.Transcribe(ctx, ch.Samples, rate, p)
		if err != nil {
			return err
		}
		res.Shift(ch.OffsetMS)
		combined.Append(res)
	}

	if err := Attach(view, doc, combined); err != nil {
		return err
	}
	a.logger.Infof("annotated %s: %d sentences, %d tokens", doc.Properties.ID, len(combined.Sentences), combined.TokenCount())
	return nil
}

// Attach maps an inference result and writes the annotations into the view.
// On a mapping error nothing is written.
func Attach(view *mmif.View, src *mmif.Document, res asr.Result) error {
	mapping, err := align.MapAll(res)
	if err != nil {
		return err
	}
	writeView(view, src, res, mapping)
	return nil
}

// writeView seeds the view with one TextDocument plus the token, sentence,
// time frame, and alignment annotations. Walk order matches align.MapAll so
// mapping indexes line up with result tokens.
func writeView(view *mmif.View, src *mmif.Document, res asr.Result, mapping align.Mapping) {
	lang := res.Language
	if lang == "" || lang == "auto" {
		lang = "en"
	}
	td := view.NewTextDocument(mapping.Doc.Text, lang)
	tdID := view.LongID(td)
	view.NewAnnotation(mmif.Alignment, map[string]any{
		"source": src.Properties.ID,
		"target": tdID,
	})

	tokIdx := 0
	for si, sent := range res.Sentences {
		tokenIDs := make([]string, 0, len(sent.Tokens))
		for _, tok := range sent.Tokens {
			al := mapping.Tokens[tokIdx]
			tokIdx++
			tk := view.NewAnnotation(mmif.Token, map[string]any{
				"word":     tok.Text,
				"start":    al.CharStart,
				"end":      al.CharEnd,
				"document": tdID,
			})
			tokenIDs = append(tokenIDs, tk.ID())
			tf := view.NewAnnotation(mmif.TimeFrame, map[string]any{
				"label":    "speech",
				"timeUnit": "milliseconds",
				"start":    al.TimeStart,
				"end":      al.TimeEnd,
			})
			view.NewAnnotation(mmif.Alignment, map[string]any{
				"source": view.LongID(tf),
				"target": view.LongID(tk),
			})
		}
		sal := mapping.Sentences[si]
		se := view.NewAnnotation(mmif.Sentence, map[string]any{
			"targets":  tokenIDs,
			"text":     sent.Text(),
			"start":    sal.CharStart,
			"end":      sal.CharEnd,
			"document": tdID,
		})
		tf := view.NewAnnotation(mmif.TimeFrame, map[string]any{
			"label":    "speech",
			"timeUnit": "milliseconds",
			"start":    sal.TimeStart,
			"end":      sal.TimeEnd,
		})
		view.NewAnnotation(mmif.Alignment, map[string]any{
			"source": view.LongID(tf),
			"target": view.LongID(se),
		})
	}
}

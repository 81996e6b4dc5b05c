// Package align maps a timed inference result onto a text document: it
// builds the full transcript text and produces one character/time alignment
// per token and per sentence. It is pure: no I/O, no state across calls, and
// it either maps the whole result or fails without partial output.
package align

import (
	"errors"
	"fmt"
	"strings"

	"speechmark/internal/asr"
)

// Separator rules: tokens within a sentence are joined by a single space,
// sentences by a single newline.
const (
	TokenSep    = " "
	SentenceSep = "\n"
)

// Document is the built transcript text.
type Document struct {
	Text string
}

// Alignment links a time span in the source audio to a character span in the
// document text. Char offsets are byte offsets, half-open [CharStart,
// CharEnd); times are milliseconds, inclusive [TimeStart, TimeEnd].
type Alignment struct {
	CharStart int
	CharEnd   int
	TimeStart int64
	TimeEnd   int64
}

// Mapping is the complete output of MapAll. Tokens holds one alignment per
// token in document order; Sentences one per sentence. Indexes match the
// walk order of the input result.
type Mapping struct {
	Doc       Document
	Tokens    []Alignment
	Sentences []Alignment
}

// MalformedError reports an input-contract violation in the inference
// result. The mapper never repairs bad input; the request fails instead.
type MalformedError struct {
	Reason   string
	Sentence int
	Token    int // -1 for sentence-level violations
}

func (e *MalformedError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("malformed inference result: sentence %d: %s", e.Sentence, e.Reason)
	}
	return fmt.Sprintf("malformed inference result: sentence %d token %d: %s", e.Sentence, e.Token, e.Reason)
}

// IsMalformed reports whether err is a MalformedError.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}

// BuildDocument joins all sentence texts into one document. An empty input
// yields a document with empty text.
func BuildDocument(sentences []asr.Sentence) Document {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = s.Text()
	}
	return Document{Text: strings.Join(parts, SentenceSep)}
}

// AlignToken aligns one token starting at charOffset in doc. Pure; the
// caller advances the offset.
func AlignToken(tok asr.Token, doc Document, charOffset int) (Alignment, error) {
	if tok.End < tok.Start {
		return Alignment{}, &MalformedError{Reason: fmt.Sprintf("token end %d before start %d", tok.End, tok.Start), Token: -1}
	}
	end := charOffset + len(tok.Text)
	if charOffset < 0 || end > len(doc.Text) {
		return Alignment{}, fmt.Errorf("token char range [%d,%d) outside document of length %d", charOffset, end, len(doc.Text))
	}
	return Alignment{
		CharStart: charOffset,
		CharEnd:   end,
		TimeStart: tok.Start,
		TimeEnd:   tok.End,
	}, nil
}

// AlignSentence aligns a whole sentence spanning [startOffset, endOffset) in
// doc. The time range covers min token start to max token end.
func AlignSentence(sent asr.Sentence, doc Document, startOffset, endOffset int) (Alignment, error) {
	if startOffset < 0 || endOffset < startOffset || endOffset > len(doc.Text) {
		return Alignment{}, fmt.Errorf("sentence char range [%d,%d) outside document of length %d", startOffset, endOffset, len(doc.Text))
	}
	return Alignment{
		CharStart: startOffset,
		CharEnd:   endOffset,
		TimeStart: sent.Start(),
		TimeEnd:   sent.End(),
	}, nil
}

// MapAll validates the result, builds the document, and walks sentences in
// order with a running character cursor, emitting one alignment per token
// and per sentence. Single pass, deterministic, O(total tokens). An empty
// result maps to an empty document with no alignments.
func MapAll(res asr.Result) (Mapping, error) {
	if err := validate(res); err != nil {
		return Mapping{}, err
	}

	doc := BuildDocument(res.Sentences)
	m := Mapping{Doc: doc}

	cursor := 0
	for i, sent := range res.Sentences {
		sentStart := cursor
		for j, tok := range sent.Tokens {
			if j > 0 {
				cursor += len(TokenSep)
			}
			a, err := AlignToken(tok, doc, cursor)
			if err != nil {
				return Mapping{}, err
			}
			m.Tokens = append(m.Tokens, a)
			cursor = a.CharEnd
		}
		sa, err := AlignSentence(sent, doc, sentStart, cursor)
		if err != nil {
			return Mapping{}, err
		}
		m.Sentences = append(m.Sentences, sa)
		if i < len(res.Sentences)-1 {
			cursor += len(SentenceSep)
		}
	}
	return m, nil
}

// validate checks the timestamp invariants up front so a failing result
// produces no partial output.
func validate(res asr.Result) error {
	for i, sent := range res.Sentences {
		if len(sent.Tokens) == 0 {
			return &MalformedError{Reason: "sentence has no tokens", Sentence: i, Token: -1}
		}
		var prevStart int64 = -1 << 62
		for j, tok := range sent.Tokens {
			if tok.End < tok.Start {
				return &MalformedError{
					Reason:   fmt.Sprintf("token end %d before start %d", tok.End, tok.Start),
					Sentence: i,
					Token:    j,
				}
			}
			if tok.Start < prevStart {
				return &MalformedError{
					Reason:   fmt.Sprintf("token start %d out of order (previous %d)", tok.Start, prevStart),
					Sentence: i,
					Token:    j,
				}
			}
			prevStart = tok.Start
		}
	}
	return nil
}

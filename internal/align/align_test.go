package align

import (
	"reflect"
	"strings"
	"testing"

	"speechmark/internal/asr"
)

func result(sentences ...asr.Sentence) asr.Result {
	return asr.Result{Sentences: sentences}
}

func sentence(tokens ...asr.Token) asr.Sentence {
	return asr.Sentence{Tokens: tokens}
}

func tok(text string, start, end int64) asr.Token {
	return asr.Token{Text: text, Start: start, End: end}
}

func TestMapAllScenario(t *testing.T) {
	res := result(sentence(tok("hi", 0, 500), tok("there", 500, 900)))

	m, err := MapAll(res)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if m.Doc.Text != "hi there" {
		t.Fatalf("text = %q, want %q", m.Doc.Text, "hi there")
	}
	if len(m.Tokens) != 2 || len(m.Sentences) != 1 {
		t.Fatalf("got %d token and %d sentence alignments", len(m.Tokens), len(m.Sentences))
	}
	if m.Tokens[0].CharStart != 0 || m.Tokens[0].CharEnd != 2 {
		t.Fatalf("token 0 char range [%d,%d), want [0,2)", m.Tokens[0].CharStart, m.Tokens[0].CharEnd)
	}
	if m.Tokens[1].CharStart != 3 || m.Tokens[1].CharEnd != 8 {
		t.Fatalf("token 1 char range [%d,%d), want [3,8)", m.Tokens[1].CharStart, m.Tokens[1].CharEnd)
	}
	s := m.Sentences[0]
	if s.CharStart != 0 || s.CharEnd != 8 || s.TimeStart != 0 || s.TimeEnd != 900 {
		t.Fatalf("sentence alignment %+v", s)
	}
}

func TestMapAllEmptyInput(t *testing.T) {
	m, err := MapAll(asr.Result{})
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if m.Doc.Text != "" || len(m.Tokens) != 0 || len(m.Sentences) != 0 {
		t.Fatalf("expected empty mapping, got %+v", m)
	}
}

func TestMapAllDeterminism(t *testing.T) {
	res := result(
		sentence(tok("one", 0, 100), tok("two", 100, 250)),
		sentence(tok("three", 300, 500)),
	)
	a, err := MapAll(res)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	b, err := MapAll(res)
	if err != nil {
		t.Fatalf("map again: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("mappings differ between runs")
	}
}

func TestMapAllOffsetValidityAndRoundTrip(t *testing.T) {
	res := result(
		sentence(tok("the", 0, 120), tok("quick", 120, 300), tok("fox", 300, 480)),
		sentence(tok("jumps", 600, 800)),
		sentence(tok("", 900, 900), tok("over", 900, 1100)),
	)
	m, err := MapAll(res)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	for i, a := range m.Tokens {
		if a.CharStart < 0 || a.CharStart > a.CharEnd || a.CharEnd > len(m.Doc.Text) {
			t.Fatalf("token %d: invalid char range [%d,%d) for doc length %d", i, a.CharStart, a.CharEnd, len(m.Doc.Text))
		}
	}
	for i, a := range m.Sentences {
		if a.CharStart < 0 || a.CharStart > a.CharEnd || a.CharEnd > len(m.Doc.Text) {
			t.Fatalf("sentence %d: invalid char range", i)
		}
	}

	// Rebuild the document from token spans using the separator rules.
	var b strings.Builder
	idx := 0
	for si, sent := range res.Sentences {
		if si > 0 {
			b.WriteString(SentenceSep)
		}
		for ti := range sent.Tokens {
			if ti > 0 {
				b.WriteString(TokenSep)
			}
			a := m.Tokens[idx]
			idx++
			b.WriteString(m.Doc.Text[a.CharStart:a.CharEnd])
		}
	}
	if b.String() != m.Doc.Text {
		t.Fatalf("round trip mismatch:\n%q\n%q", b.String(), m.Doc.Text)
	}
}

func TestMapAllTokenCoverage(t *testing.T) {
	res := result(sentence(tok("a", 0, 10), tok("bb", 10, 30), tok("ccc", 30, 60)))
	m, err := MapAll(res)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	s := m.Sentences[0]
	if m.Tokens[0].CharStart != s.CharStart {
		t.Fatalf("first token does not start the sentence span")
	}
	if m.Tokens[len(m.Tokens)-1].CharEnd != s.CharEnd {
		t.Fatalf("last token does not end the sentence span")
	}
	for i := 1; i < len(m.Tokens); i++ {
		gap := m.Tokens[i].CharStart - m.Tokens[i-1].CharEnd
		if gap != len(TokenSep) {
			t.Fatalf("gap between tokens %d and %d is %d, want %d", i-1, i, gap, len(TokenSep))
		}
	}
}

func TestMapAllRejectsReversedTimestamps(t *testing.T) {
	res := result(sentence(tok("bad", 500, 400)))
	m, err := MapAll(res)
	if err == nil {
		t.Fatalf("expected malformed result error")
	}
	if !IsMalformed(err) {
		t.Fatalf("expected MalformedError, got %T: %v", err, err)
	}
	if len(m.Tokens) != 0 || m.Doc.Text != "" {
		t.Fatalf("partial output emitted on failure: %+v", m)
	}
}

func TestMapAllRejectsOutOfOrderStarts(t *testing.T) {
	res := result(sentence(tok("b", 500, 600), tok("a", 100, 200)))
	if _, err := MapAll(res); !IsMalformed(err) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestMapAllRejectsEmptySentence(t *testing.T) {
	res := result(sentence())
	if _, err := MapAll(res); !IsMalformed(err) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
}

func TestMapAllZeroDurationToken(t *testing.T) {
	res := result(sentence(tok("blip", 100, 100)))
	m, err := MapAll(res)
	if err != nil {
		t.Fatalf("zero duration token must be accepted: %v", err)
	}
	if m.Tokens[0].TimeStart != 100 || m.Tokens[0].TimeEnd != 100 {
		t.Fatalf("time range %+v", m.Tokens[0])
	}
}

func TestMapAllEmptyTokenText(t *testing.T) {
	res := result(sentence(tok("", 0, 50), tok("x", 50, 80)))
	m, err := MapAll(res)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if m.Tokens[0].CharStart != m.Tokens[0].CharEnd {
		t.Fatalf("empty token should have zero-length char range, got [%d,%d)", m.Tokens[0].CharStart, m.Tokens[0].CharEnd)
	}
}

func TestAlignTokenBounds(t *testing.T) {
	doc := Document{Text: "short"}
	if _, err := AlignToken(tok("longer", 0, 10), doc, 2); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
	a, err := AlignToken(tok("ort", 0, 10), doc, 2)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if doc.Text[a.CharStart:a.CharEnd] != "ort" {
		t.Fatalf("char range picks %q", doc.Text[a.CharStart:a.CharEnd])
	}
}

func TestBuildDocumentSeparators(t *testing.T) {
	d := BuildDocument([]asr.Sentence{
		sentence(tok("hello", 0, 1), tok("world", 1, 2)),
		sentence(tok("bye", 3, 4)),
	})
	if d.Text != "hello world\nbye" {
		t.Fatalf("text = %q", d.Text)
	}
	if BuildDocument(nil).Text != "" {
		t.Fatalf("empty input should build empty text")
	}
}

package asr

import "testing"

func TestParseRunnerOutput(t *testing.T) {
	data := []byte(`{
		"language": "en",
		"words": [
			{"word": "hi", "start": 0.0, "end": 0.5, "confidence": 0.99},
			{"word": "there", "start": 0.5, "end": 0.9},
			{"word": "bye", "start": 1.5, "end": 1.8}
		],
		"segments": [
			{"segment": "hi there", "start": 0.0, "end": 1.0},
			{"segment": "bye", "start": 1.5, "end": 1.8}
		]
	}`)
	res, err := parseRunnerOutput(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Language != "en" {
		t.Fatalf("language = %q", res.Language)
	}
	if len(res.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(res.Sentences))
	}
	if got := res.Sentences[0].Text(); got != "hi there" {
		t.Fatalf("sentence 0 = %q", got)
	}
	if got := res.Sentences[1].Text(); got != "bye" {
		t.Fatalf("sentence 1 = %q", got)
	}
	first := res.Sentences[0].Tokens[0]
	if first.Start != 0 || first.End != 500 || first.Confidence != 0.99 {
		t.Fatalf("token times not converted to ms: %+v", first)
	}
}

func TestParseRunnerOutputRejectsGarbage(t *testing.T) {
	if _, err := parseRunnerOutput([]byte("nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGroupWordsWithoutSegments(t *testing.T) {
	words := []runnerWord{{Word: "a", Start: 0, End: 1}, {Word: "b", Start: 1, End: 2}}
	sentences := groupWords(words, nil)
	if len(sentences) != 1 || len(sentences[0].Tokens) != 2 {
		t.Fatalf("expected a single sentence with both words, got %+v", sentences)
	}
}

func TestGroupWordsTrailingWordsStayInLastSegment(t *testing.T) {
	words := []runnerWord{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 5, End: 6}, // past every segment end
	}
	segs := []runnerSegment{{Text: "a", Start: 0, End: 2}}
	sentences := groupWords(words, segs)
	if len(sentences) != 1 || len(sentences[0].Tokens) != 2 {
		t.Fatalf("trailing word lost: %+v", sentences)
	}
}

func TestResultShiftAndAppend(t *testing.T) {
	a := Result{Language: "en", Sentences: []Sentence{{Tokens: []Token{{Text: "x", Start: 0, End: 100}}}}}
	b := Result{Sentences: []Sentence{{Tokens: []Token{{Text: "y", Start: 0, End: 200}}}}}
	b.Shift(1000)
	a.Append(b)
	if len(a.Sentences) != 2 {
		t.Fatalf("append lost sentences")
	}
	tok := a.Sentences[1].Tokens[0]
	if tok.Start != 1000 || tok.End != 1200 {
		t.Fatalf("shift not applied: %+v", tok)
	}
	if a.TokenCount() != 2 {
		t.Fatalf("token count = %d", a.TokenCount())
	}
}

func TestSentenceDerivedFields(t *testing.T) {
	s := Sentence{Tokens: []Token{
		{Text: "one", Start: 10, End: 50},
		{Text: "two", Start: 50, End: 40}, // end earlier than a previous end
		{Text: "three", Start: 60, End: 90},
	}}
	if s.Text() != "one two three" {
		t.Fatalf("text = %q", s.Text())
	}
	if s.Start() != 10 || s.End() != 90 {
		t.Fatalf("span = [%d,%d]", s.Start(), s.End())
	}
	var empty Sentence
	if empty.Text() != "" || empty.Start() != 0 || empty.End() != 0 {
		t.Fatalf("empty sentence derived fields")
	}
}

func TestLookupSizes(t *testing.T) {
	for _, size := range Sizes() {
		m, err := Lookup(size)
		if err != nil {
			t.Fatalf("lookup %s: %v", size, err)
		}
		if m.ID == "" || m.Revision == "" {
			t.Fatalf("catalog entry for %s incomplete: %+v", size, m)
		}
	}
	if _, err := Lookup("9000b"); err == nil {
		t.Fatalf("expected error for unknown size")
	}
}

package mmif

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleContainer = `{
  "metadata": {"mmif": "http://mmif.clams.ai/1.0.5"},
  "documents": [
    {"@type": "http://mmif.clams.ai/vocabulary/AudioDocument/v1",
     "properties": {"id": "d1", "location": "file:///data/audio/hello.wav", "mime": "audio"}}
  ],
  "views": []
}`

func TestParseAndDocumentLookup(t *testing.T) {
	m, err := Parse([]byte(sampleContainer))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	docs := m.DocumentsByType(AudioDocument, VideoDocument)
	if len(docs) != 1 {
		t.Fatalf("expected 1 media document, got %d", len(docs))
	}
	if got := docs[0].LocationPath(); got != "/data/audio/hello.wav" {
		t.Fatalf("location path = %q", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewViewSequentialIDs(t *testing.T) {
	m := New()
	v0 := m.NewView()
	v1 := m.NewView()
	if v0.ID != "v_0" || v1.ID != "v_1" {
		t.Fatalf("view ids %q %q", v0.ID, v1.ID)
	}
}

func TestNewViewSkipsTakenIDs(t *testing.T) {
	m, err := Parse([]byte(`{"documents":[],"views":[{"id":"v_0","metadata":{},"annotations":[]}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := m.NewView()
	if v.ID != "v_1" {
		t.Fatalf("expected v_1, got %q", v.ID)
	}
}

func TestAnnotationIDsAndContains(t *testing.T) {
	m := New()
	v := m.NewView()
	td := v.NewTextDocument("hello world", "en")
	tk := v.NewAnnotation(Token, map[string]any{"word": "hello"})
	tk2 := v.NewAnnotation(Token, map[string]any{"word": "world"})
	al := v.NewAnnotation(Alignment, map[string]any{"source": "d1", "target": v.LongID(td)})

	if td.ID() != "td_1" || tk.ID() != "tk_1" || tk2.ID() != "tk_2" || al.ID() != "a_1" {
		t.Fatalf("ids: %s %s %s %s", td.ID(), tk.ID(), tk2.ID(), al.ID())
	}
	if v.LongID(tk) != "v_0:tk_1" {
		t.Fatalf("long id = %q", v.LongID(tk))
	}
	for _, uri := range []string{TextDocument, Token, Alignment} {
		if _, ok := v.Metadata.Contains[uri]; !ok {
			t.Fatalf("contains missing %s", uri)
		}
	}
}

func TestErrorViewDropsContains(t *testing.T) {
	m := New()
	v := m.NewView()
	v.NewAnnotation(Token, nil)
	v.SetError("boom")
	if v.Metadata.Contains != nil {
		t.Fatalf("error view should not declare contains")
	}
	out, err := m.Encode(false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), `"error":{"message":"boom"}`) {
		t.Fatalf("encoded view missing error: %s", out)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m := New()
	m.Documents = append(m.Documents, &Document{
		Type:       AudioDocument,
		Properties: DocumentProps{ID: "d1", Location: "file:///a.wav"},
	})
	v := m.NewView()
	v.Sign("speechmark/0.1.0", map[string]string{"modelSize": "0.6b"})
	v.NewTextDocument("hi", "en")

	out, err := m.Encode(true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(back.Views) != 1 || back.Views[0].Metadata.App != "speechmark/0.1.0" {
		t.Fatalf("round trip lost view metadata: %+v", back.Views[0].Metadata)
	}
	// ids keep counting after a round trip
	a := back.Views[0].NewAnnotation(TextDocument, nil)
	if a.ID() != "td_2" {
		t.Fatalf("post-parse id = %q, want td_2", a.ID())
	}
}

func TestTextValueJSON(t *testing.T) {
	m := New()
	v := m.NewView()
	v.NewTextDocument("hello", "en")
	out, err := json.Marshal(v.Annotations[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"@value":"hello"`) || !strings.Contains(string(out), `"@language":"en"`) {
		t.Fatalf("text document json: %s", out)
	}
}

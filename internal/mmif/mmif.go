// Package mmif implements a minimal reader/writer for the multimedia
// annotation container format: source documents plus append-only views of
// annotations. Input documents and existing views are preserved untouched;
// the annotator only appends new views.
package mmif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Vocabulary type URIs for documents and annotations.
const (
	AudioDocument = "http://mmif.clams.ai/vocabulary/AudioDocument/v1"
	VideoDocument = "http://mmif.clams.ai/vocabulary/VideoDocument/v1"
	TextDocument  = "http://mmif.clams.ai/vocabulary/TextDocument/v1"
	TimeFrame     = "http://mmif.clams.ai/vocabulary/TimeFrame/v5"
	Alignment     = "http://mmif.clams.ai/vocabulary/Alignment/v1"
	Token         = "http://vocab.lappsgrid.org/Token"
	Sentence      = "http://vocab.lappsgrid.org/Sentence"
)

const specVersion = "http://mmif.clams.ai/1.0.5"

// Mmif is the top-level container.
type Mmif struct {
	Metadata  map[string]string `json:"metadata"`
	Documents []*Document       `json:"documents"`
	Views     []*View           `json:"views"`
}

// Document is a top-level source document (media file or text).
type Document struct {
	Type       string        `json:"@type"`
	Properties DocumentProps `json:"properties"`
}

// DocumentProps holds the recognized document properties.
type DocumentProps struct {
	ID       string     `json:"id"`
	Location string     `json:"location,omitempty"`
	Mime     string     `json:"mime,omitempty"`
	Text     *TextValue `json:"text,omitempty"`
}

// TextValue is the @value/@language pair used by text documents.
type TextValue struct {
	Value    string `json:"@value"`
	Language string `json:"@language,omitempty"`
}

// New returns an empty container with format metadata set.
func New() *Mmif {
	return &Mmif{
		Metadata:  map[string]string{"mmif": specVersion},
		Documents: []*Document{},
		Views:     []*View{},
	}
}

// Parse decodes a container from JSON.
func Parse(data []byte) (*Mmif, error) {
	m := &Mmif{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("parse container: %w", err)
	}
	if m.Metadata == nil {
		m.Metadata = map[string]string{"mmif": specVersion}
	}
	for _, v := range m.Views {
		v.reindex()
	}
	return m, nil
}

// Encode serializes the container, optionally pretty-printed.
func (m *Mmif) Encode(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(m, "", "  ")
	}
	return json.Marshal(m)
}

// DocumentsByType returns documents whose @type matches any of the given URIs.
func (m *Mmif) DocumentsByType(types ...string) []*Document {
	var out []*Document
	for _, d := range m.Documents {
		for _, t := range types {
			if d.Type == t {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// NewView appends an empty view with the next free sequential id.
func (m *Mmif) NewView() *View {
	taken := map[string]bool{}
	for _, v := range m.Views {
		taken[v.ID] = true
	}
	n := len(m.Views)
	id := fmt.Sprintf("v_%d", n)
	for taken[id] {
		n++
		id = fmt.Sprintf("v_%d", n)
	}
	v := newView(id)
	m.Views = append(m.Views, v)
	return v
}

// LocationPath returns the document location as a local filesystem path.
func (d *Document) LocationPath() string {
	loc := d.Properties.Location
	if strings.HasPrefix(loc, "file://") {
		return strings.TrimPrefix(loc, "file://")
	}
	return loc
}

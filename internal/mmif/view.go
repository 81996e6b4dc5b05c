package mmif

import (
	"fmt"
	"strings"
)

// View is an append-only set of annotations produced by one app run over the
// container.
type View struct {
	ID          string        `json:"id"`
	Metadata    ViewMetadata  `json:"metadata"`
	Annotations []*Annotation `json:"annotations"`

	counters map[string]int
}

// ViewMetadata records which app produced the view, the parameters it ran
// with, and the annotation types it contains. Error is set instead of
// Contains when the run failed.
type ViewMetadata struct {
	App        string              `json:"app,omitempty"`
	Timestamp  string              `json:"timestamp,omitempty"`
	Parameters map[string]string   `json:"parameters,omitempty"`
	Contains   map[string]struct{} `json:"contains,omitempty"`
	Error      *ViewError          `json:"error,omitempty"`
}

// ViewError marks a failed view.
type ViewError struct {
	Message string `json:"message"`
}

// Annotation is a single typed annotation with free-form properties.
type Annotation struct {
	Type       string         `json:"@type"`
	Properties map[string]any `json:"properties"`
}

// id prefixes per annotation type, matching the container's conventions.
var idPrefixes = map[string]string{
	TextDocument: "td",
	Token:        "tk",
	Sentence:     "se",
	TimeFrame:    "tf",
	Alignment:    "a",
}

func newView(id string) *View {
	return &View{
		ID:          id,
		Annotations: []*Annotation{},
		counters:    map[string]int{},
	}
}

// Sign records the producing app and its parameters on the view.
func (v *View) Sign(app string, params map[string]string) {
	v.Metadata.App = app
	v.Metadata.Parameters = params
}

// SetError marks the view as failed; a failed view carries no contains
// declaration.
func (v *View) SetError(msg string) {
	v.Metadata.Error = &ViewError{Message: msg}
	v.Metadata.Contains = nil
}

// NewAnnotation appends an annotation of the given type, assigning the next
// sequential id for that type and registering the type in the view's
// contains metadata. The props map is used as-is.
func (v *View) NewAnnotation(typeURI string, props map[string]any) *Annotation {
	if v.counters == nil {
		v.counters = map[string]int{}
	}
	prefix, ok := idPrefixes[typeURI]
	if !ok {
		prefix = "an"
	}
	v.counters[prefix]++
	if props == nil {
		props = map[string]any{}
	}
	props["id"] = fmt.Sprintf("%s_%d", prefix, v.counters[prefix])
	a := &Annotation{Type: typeURI, Properties: props}
	v.Annotations = append(v.Annotations, a)
	if v.Metadata.Error == nil {
		if v.Metadata.Contains == nil {
			v.Metadata.Contains = map[string]struct{}{}
		}
		v.Metadata.Contains[typeURI] = struct{}{}
	}
	return a
}

// NewTextDocument appends a TextDocument annotation holding the given text.
func (v *View) NewTextDocument(text, lang string) *Annotation {
	return v.NewAnnotation(TextDocument, map[string]any{
		"text": &TextValue{Value: text, Language: lang},
	})
}

// ID returns the annotation's short id.
func (a *Annotation) ID() string {
	id, _ := a.Properties["id"].(string)
	return id
}

// LongID returns the view-qualified id of an annotation in this view.
func (v *View) LongID(a *Annotation) string {
	return v.ID + ":" + a.ID()
}

// reindex rebuilds per-prefix counters after parsing, so annotations added to
// an existing view keep ids unique.
func (v *View) reindex() {
	v.counters = map[string]int{}
	for _, a := range v.Annotations {
		id := a.ID()
		i := strings.LastIndex(id, "_")
		if i < 0 {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(id[i+1:], "%d", &n); err != nil {
			continue
		}
		if n > v.counters[id[:i]] {
			v.counters[id[:i]] = n
		}
	}
}

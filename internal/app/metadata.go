package app

import "speechmark/internal/mmif"

// Version is the app version; AnalyzerVersion pins the wrapped model family
// release the output was validated against.
const (
	Name            = "speechmark"
	Identifier      = "speechmark"
	Version         = "0.1.0"
	AnalyzerVersion = "20250714"
)

// Parameter declares one runtime parameter accepted by the annotator.
type Parameter struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Choices     []string `json:"choices,omitempty"`
	Default     string   `json:"default"`
}

// Metadata is the app's self-description served on GET / and printed by the
// metadata command.
type Metadata struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	AppVersion      string      `json:"app_version"`
	AppLicense      string      `json:"app_license"`
	Identifier      string      `json:"identifier"`
	URL             string      `json:"url"`
	AnalyzerVersion string      `json:"analyzer_version"`
	AnalyzerLicense string      `json:"analyzer_license"`
	Input           [][]string  `json:"input"`
	Output          []string    `json:"output"`
	Parameters      []Parameter `json:"parameters"`
}

// AppMetadata returns the metadata declaration.
func AppMetadata() Metadata {
	return Metadata{
		Name:            Name,
		Description:     "Transcribes audio or video documents with a pre-trained ASR model and attaches text, token, sentence, time frame, and alignment annotations to the container.",
		AppVersion:      Version,
		AppLicense:      "Apache-2.0",
		Identifier:      Identifier,
		URL:             "https://github.com/speechmark/speechmark",
		AnalyzerVersion: AnalyzerVersion,
		AnalyzerLicense: "cc-by-4.0",
		Input: [][]string{
			{mmif.AudioDocument, mmif.VideoDocument},
		},
		Output: []string{
			mmif.TextDocument,
			mmif.TimeFrame,
			mmif.Alignment,
			mmif.Token,
			mmif.Sentence,
		},
		Parameters: []Parameter{
			{
				Name:        "language",
				Description: "Recognition locale, or 'auto' to detect.",
				Type:        "string",
				Default:     "auto",
			},
			{
				Name:        "modelSize",
				Description: "Model size to use.",
				Type:        "string",
				Choices:     []string{"110m", "0.6b", "1.1b"},
				Default:     "0.6b",
			},
			{
				Name:        "contextSize",
				Description: "Local attention context size. Any positive integer, or 0 for global attention. Larger contexts need more memory.",
				Type:        "integer",
				Default:     "96",
			},
			{
				Name:        "chunkDuration",
				Description: "Per-inference audio window in seconds; 0 transcribes the whole file in one pass.",
				Type:        "integer",
				Default:     "300",
			},
			{
				Name:        "device",
				Description: "Compute backend.",
				Type:        "string",
				Choices:     []string{"auto", "cpu", "cuda", "metal"},
				Default:     "auto",
			},
			{
				Name:        "pretty",
				Description: "Pretty-print the response container.",
				Type:        "boolean",
				Default:     "false",
			},
		},
	}
}

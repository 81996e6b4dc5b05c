package asr

import "fmt"

// Model identifies a pinned upstream checkpoint.
type Model struct {
	ID       string
	Revision string
}

// Size-keyed catalog of supported checkpoints. Revisions are pinned because
// the hub always serves the main HEAD otherwise; other checkpoints are not
// supported since they lack punctuation and capitalization.
var sizeCatalog = map[string]Model{
	"110m": {ID: "nvidia/parakeet-tdt_ctc-110m", Revision: "431a349f3051ab85c22b9b7a2741b5fe77065665"},
	"0.6b": {ID: "nvidia/parakeet-tdt-0.6b-v2", Revision: "d97f7ac5d85e7185b7a7c4771c883c0e26d1d16f"},
	"1.1b": {ID: "nvidia/parakeet-tdt_ctc-1.1b", Revision: "675e78684c83ae21e2a8fb042726b66d91b9ba3d"},
}

// Lookup resolves a size keyword to its pinned model.
func Lookup(size string) (Model, error) {
	m, ok := sizeCatalog[size]
	if !ok {
		return Model{}, fmt.Errorf("unsupported model size %q", size)
	}
	return m, nil
}

// Sizes lists the supported size keywords.
func Sizes() []string {
	return []string{"110m", "0.6b", "1.1b"}
}

// GGMLFileFor maps a size keyword to the whisper.cpp model file used by the
// whisper backend.
func GGMLFileFor(size string) string {
	switch size {
	case "110m":
		return "ggml-small-q5_1.bin"
	case "1.1b":
		return "ggml-large-v3-turbo-q8_0.bin"
	default:
		return "ggml-medium-q5_1.bin"
	}
}

// GGMLRegistry maps downloadable whisper.cpp model files to their URLs.
var GGMLRegistry = map[string]string{
	"ggml-small-q5_1.bin":          "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small-q5_1.bin",
	"ggml-medium-q5_1.bin":         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium-q5_1.bin",
	"ggml-large-v3-q5_0.bin":       "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-q5_0.bin",
	"ggml-large-v3-turbo-q8_0.bin": "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo-q8_0.bin",
}

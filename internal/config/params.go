package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RuntimeParams are the per-request knobs accepted by the annotator. They are
// resolved from config defaults plus request overrides and validated once at
// request start.
type RuntimeParams struct {
	Language    string // recognition locale, "auto" = detect
	ModelSize   string // 110m, 0.6b, 1.1b
	ContextSize int    // local attention window, 0 = global attention
	ChunkSec    int    // per-inference audio window in seconds, 0 = whole file
	Device      string // auto, cpu, cuda, metal
	Pretty      bool   // pretty-print the response container
}

var (
	validModelSizes = []string{"110m", "0.6b", "1.1b"}
	validDevices    = []string{"auto", "cpu", "cuda", "metal"}
)

// ParamsFrom builds RuntimeParams from config defaults overridden by the
// request's string key/value parameters (query params on the serve path,
// flags on the CLI path). Unknown keys are rejected.
func ParamsFrom(cfg *Config, overrides map[string]string) (RuntimeParams, error) {
	p := RuntimeParams{
		Language:    cfg.ASR.Language,
		ModelSize:   cfg.ASR.ModelSize,
		ContextSize: cfg.ASR.ContextSize,
		ChunkSec:    cfg.Media.ChunkSec,
		Device:      cfg.ASR.Device,
	}
	for k, v := range overrides {
		switch k {
		case "language":
			p.Language = v
		case "modelSize":
			p.ModelSize = v
		case "contextSize":
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, fmt.Errorf("contextSize: %w", err)
			}
			p.ContextSize = n
		case "chunkDuration":
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, fmt.Errorf("chunkDuration: %w", err)
			}
			p.ChunkSec = n
		case "device":
			p.Device = v
		case "pretty":
			p.Pretty = v != "0" && strings.ToLower(v) != "false"
		default:
			return p, fmt.Errorf("unknown parameter %q", k)
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks that every field holds an accepted value.
func (p RuntimeParams) Validate() error {
	if !contains(validModelSizes, p.ModelSize) {
		return fmt.Errorf("modelSize must be one of %v (got %q)", validModelSizes, p.ModelSize)
	}
	if !contains(validDevices, p.Device) {
		return fmt.Errorf("device must be one of %v (got %q)", validDevices, p.Device)
	}
	if p.ContextSize < 0 {
		return fmt.Errorf("contextSize must be >= 0 (got %d)", p.ContextSize)
	}
	if p.ChunkSec < 0 {
		return fmt.Errorf("chunkDuration must be >= 0 (got %d)", p.ChunkSec)
	}
	if strings.TrimSpace(p.Language) == "" {
		return fmt.Errorf("language must not be empty")
	}
	return nil
}

// Map renders the params back to the string form recorded on output views.
func (p RuntimeParams) Map() map[string]string {
	return map[string]string{
		"language":      p.Language,
		"modelSize":     p.ModelSize,
		"contextSize":   strconv.Itoa(p.ContextSize),
		"chunkDuration": strconv.Itoa(p.ChunkSec),
		"device":        p.Device,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultPort          = 5000
	defaultChunkSec      = 300
	defaultContextSize   = 96
	defaultStateDirLinux = ".local/state/speechmark"
	defaultConfigDir     = ".config/speechmark"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Server struct {
		Port           int      `toml:"port"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`

	ASR struct {
		Backend       string `toml:"backend"`        // runner, whisper
		ModelSize     string `toml:"model_size"`     // 110m, 0.6b, 1.1b
		ModelDir      string `toml:"model_dir"`      // downloaded model files
		Language      string `toml:"language"`       // auto or ISO code
		Device        string `toml:"device"`         // auto, cpu, cuda, metal
		ContextSize   int    `toml:"context_size"`   // local attention window, 0 = global
		RunnerCommand string `toml:"runner_command"` // helper executable for the runner backend
		RunnerArgs    string `toml:"runner_args"`    // extra args, shell-style string
		TimeoutSec    int    `toml:"timeout_sec"`    // per-inference timeout, 0 = none
	} `toml:"asr"`

	Media struct {
		FFmpegPath   string `toml:"ffmpeg_path"`
		SampleRate   int    `toml:"sample_rate"`
		ChunkSec     int    `toml:"chunk_sec"` // 0 = no chunking
		VADSplit     bool   `toml:"vad_split"` // prefer silence when cutting chunks
		VADFrameMS   int    `toml:"vad_frame_ms"`
		VADMode      int    `toml:"vad_mode"` // webrtc aggressiveness 0-3
		KeepExtracts bool   `toml:"keep_extracts"`
	} `toml:"media"`

	Logging struct {
		Level      string `toml:"level"`  // debug, info, warn, error
		Format     string `toml:"format"` // text, json
		Stdout     bool   `toml:"stdout"`
		MaxSizeMB  int    `toml:"max_size_mb"` // rotate above this size
		MaxBackups int    `toml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days"`
	} `toml:"logging"`

	Paths struct {
		StateDir   string `toml:"state_dir"`
		LogPath    string `toml:"log_path"`
		TmpDir     string `toml:"tmp_dir"`
		ConfigPath string `toml:"-"`
	} `toml:"paths"`

	Metrics struct {
		Enabled bool `toml:"enabled"`
	} `toml:"metrics"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/speechmark for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "speechmark")
	}

	cfg := &Config{}

	cfg.Server.Port = defaultPort

	cfg.ASR.Backend = "runner"
	cfg.ASR.ModelSize = "0.6b"
	cfg.ASR.ModelDir = filepath.Join(stateDir, "models")
	cfg.ASR.Language = "auto"
	cfg.ASR.Device = "auto"
	cfg.ASR.ContextSize = defaultContextSize
	cfg.ASR.RunnerCommand = "speechmark-runner"
	cfg.ASR.TimeoutSec = 0

	cfg.Media.FFmpegPath = "ffmpeg"
	cfg.Media.SampleRate = 16000
	cfg.Media.ChunkSec = defaultChunkSec
	cfg.Media.VADSplit = true
	cfg.Media.VADFrameMS = 30
	cfg.Media.VADMode = 2

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.Stdout = true
	cfg.Logging.MaxSizeMB = 20
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 30

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "speechmark.log")

	cfg.Metrics.Enabled = true

	return cfg, nil
}

// Load loads config from file, applying defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), cfg.ASR.ModelDir} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPEECHMARK_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SPEECHMARK_BACKEND"); v != "" {
		cfg.ASR.Backend = v
	}
	if v := os.Getenv("SPEECHMARK_MODEL_SIZE"); v != "" {
		cfg.ASR.ModelSize = v
	}
	if v := os.Getenv("SPEECHMARK_RUNNER"); v != "" {
		cfg.ASR.RunnerCommand = v
	}
	if v := os.Getenv("SPEECHMARK_FFMPEG"); v != "" {
		cfg.Media.FFmpegPath = v
	}
	if v := os.Getenv("SPEECHMARK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SPEECHMARK_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SPEECHMARK_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v != "0" && strings.ToLower(v) != "false"
	}
}

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"speechmark/internal/config"

	"github.com/sirupsen/logrus"
)

func TestConfigureWritesToLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Paths.StateDir = dir
	cfg.Paths.LogPath = filepath.Join(dir, "speechmark.log")
	cfg.ASR.ModelDir = filepath.Join(dir, "models")
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Logging.Stdout = false
	cfg.Logging.MaxSizeMB = 1

	logger, err := Configure(cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", logger.GetLevel())
	}
	logger.Info("hello")

	data, err := os.ReadFile(cfg.Paths.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("log file is empty")
	}
}

package doctor

import (
	"os"
	"os/exec"
	"strings"

	"speechmark/internal/config"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkExecutable("ffmpeg", cfg.Media.FFmpegPath),
	}
	switch cfg.ASR.Backend {
	case "runner":
		results = append(results, checkExecutable("asr.runner_command", cfg.ASR.RunnerCommand))
	case "whisper":
		results = append(results, checkDir("asr.model_dir", cfg.ASR.ModelDir))
	default:
		results = append(results, Result{Name: "asr.backend", Pass: false, Detail: "unknown backend " + cfg.ASR.Backend})
	}
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkDir(label, path string) Result {
	r := checkFile(label, path)
	if !r.Pass {
		return r
	}
	info, err := os.Stat(os.ExpandEnv(path))
	if err == nil && !info.IsDir() {
		return Result{Name: label, Pass: false, Detail: "not a directory"}
	}
	return r
}

func checkExecutable(label, cmd string) Result {
	if cmd == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	path := os.ExpandEnv(cmd)
	// If contains a path separator, treat as explicit path.
	if strings.Contains(path, "/") || strings.Contains(path, "\\") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; expected an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Else search PATH.
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

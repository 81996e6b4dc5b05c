package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExtractAudio converts an audio or video file to mono WAV at the given
// sample rate using ffmpeg and returns the path of the extracted file. The
// caller owns cleanup of the returned file.
func ExtractAudio(ctx context.Context, ffmpegPath, srcPath, tmpDir string, sampleRate int) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	out := filepath.Join(tmpDir, fmt.Sprintf("%s_%dk.wav", base, sampleRate/1000))

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-y", "-i", srcPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

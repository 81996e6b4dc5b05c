//go:build !whisper

package asr

import (
	"fmt"

	"speechmark/internal/config"

	"github.com/sirupsen/logrus"
)

func newWhisperRecognizer(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	return nil, fmt.Errorf("whisper backend requires building with -tags whisper")
}

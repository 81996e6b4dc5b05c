package main

import (
	"fmt"
	"os"

	"speechmark/internal/app"
	"speechmark/internal/control"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "speechmark",
		Short: "speechmark — ASR annotation service for multimedia containers",
		Long: `Speechmark accepts a multimedia annotation container referencing an audio or
video document, transcribes the audio with a pre-trained ASR model, and
attaches text, token, sentence, time frame, and alignment annotations back
into the container.

Key commands:
  serve                     Run the HTTP annotation service
  annotate <file>           Annotate a container file in one shot
  metadata                  Print the app metadata declaration
  models list|download|set  Manage models
  doctor                    Check ffmpeg/runner/model setup`,
		Example: `  speechmark serve --port 5000
  speechmark annotate input.mmif output.mmif --modelSize 1.1b
  speechmark metadata
  speechmark models download ggml-medium-q5_1.bin
  speechmark doctor`,
		DisableFlagsInUseLine: true,
	}

	root.Version = app.Version
	root.SetVersionTemplate("speechmark v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/speechmark/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(control.NewServeCmd(cfgPath))
	root.AddCommand(control.NewAnnotateCmd(cfgPath))
	root.AddCommand(control.NewMetadataCmd())
	root.AddCommand(control.NewModelsCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))

	return root.Execute()
}

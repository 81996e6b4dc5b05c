package control

import (
	"fmt"
	"os"

	"speechmark/internal/app"
	"speechmark/internal/config"
	"speechmark/internal/logging"
	"speechmark/internal/mmif"

	"github.com/spf13/cobra"
)

// NewAnnotateCmd annotates a container file in one shot, without the HTTP
// layer.
func NewAnnotateCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <container.json> [output.json]",
		Short: "Annotate a container file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}

			overrides := map[string]string{}
			for _, name := range []string{"language", "modelSize", "contextSize", "chunkDuration", "device", "pretty"} {
				if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
					overrides[name] = f.Value.String()
				}
			}
			p, err := config.ParamsFrom(cfg, overrides)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := mmif.Parse(data)
			if err != nil {
				return err
			}

			ann, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := ann.Close(); err != nil {
					logger.Warnf("close annotator: %v", err)
				}
			}()

			annErr := ann.Annotate(cmd.Context(), m, p)
			out, err := m.Encode(p.Pretty)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				if err := os.WriteFile(args[1], out, 0o644); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			return annErr
		},
	}
	cmd.Flags().String("language", "", "recognition locale, or auto")
	cmd.Flags().String("modelSize", "", "model size: 110m, 0.6b, 1.1b")
	cmd.Flags().String("contextSize", "", "local attention context size, 0 = global")
	cmd.Flags().String("chunkDuration", "", "audio window in seconds, 0 = whole file")
	cmd.Flags().String("device", "", "compute backend: auto, cpu, cuda, metal")
	cmd.Flags().String("pretty", "", "pretty-print output (true/false)")
	return cmd
}

// NewMetadataCmd prints the app metadata declaration.
func NewMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print app metadata as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeMetadata(cmd)
		},
	}
}

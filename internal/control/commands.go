package control

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"speechmark/internal/app"
	"speechmark/internal/asr"
	"speechmark/internal/config"
	"speechmark/internal/doctor"

	"github.com/spf13/cobra"
)

func writeMetadata(cmd *cobra.Command) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(app.AppMetadata())
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			results := doctor.Run(cfg)
			exitCode := 0
			for _, r := range results {
				status := "ok"
				if !r.Pass {
					status = "fail"
					exitCode = 1
				}
				fmt.Printf("%-20s %-4s %s\n", r.Name, status, r.Detail)
			}
			if exitCode != 0 {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
}

// NewModelsCmd wires up the models subcommands (list/download/set).
func NewModelsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List/download/select models",
	}
	cmd.AddCommand(newModelsListCmd(cfgPath))
	cmd.AddCommand(newModelsDownloadCmd(cfgPath))
	cmd.AddCommand(newModelsSetCmd(cfgPath))
	return cmd
}

func newModelsListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported model sizes and local whisper model files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			fmt.Println("runner backend sizes:")
			for _, size := range asr.Sizes() {
				m, _ := asr.Lookup(size)
				mark := ""
				if size == cfg.ASR.ModelSize {
					mark = " (selected)"
				}
				fmt.Printf("- %-5s %s @ %.12s%s\n", size, m.ID, m.Revision, mark)
			}

			local := map[string]bool{}
			entries, _ := os.ReadDir(cfg.ASR.ModelDir)
			for _, e := range entries {
				if !e.IsDir() {
					local[e.Name()] = true
				}
			}
			names := make([]string, 0, len(asr.GGMLRegistry))
			for n := range asr.GGMLRegistry {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Println("whisper backend files:")
			for _, n := range names {
				avail := ""
				if local[n] {
					avail = "(downloaded)"
				}
				fmt.Printf("- %s %s\n", n, avail)
			}
			return nil
		},
	}
}

func newModelsDownloadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-file>",
		Short: "Download a whisper model file into asr.model_dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			name := args[0]
			url, ok := asr.GGMLRegistry[name]
			if !ok {
				return fmt.Errorf("unknown model %q; run models list", name)
			}
			if err := os.MkdirAll(cfg.ASR.ModelDir, 0o755); err != nil {
				return err
			}
			dest := filepath.Join(cfg.ASR.ModelDir, name)
			if _, err := os.Stat(dest); err == nil {
				fmt.Println("already present at", dest)
				return nil
			}
			fmt.Printf("downloading %s\n", url)
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				return fmt.Errorf("download failed: %s", resp.Status)
			}
			tmp := dest + ".part"
			out, err := os.Create(tmp)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, resp.Body); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			return os.Rename(tmp, dest)
		},
	}
}

func newModelsSetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <size>",
		Short: "Set the default model size in config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if _, err := asr.Lookup(args[0]); err != nil {
				return err
			}
			cfg.ASR.ModelSize = args[0]
			if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
				return err
			}
			fmt.Printf("model size set to %s in %s\n", args[0], cfg.Paths.ConfigPath)
			return nil
		},
	}
}

package control

import (
	"os/signal"
	"syscall"

	"speechmark/internal/app"
	"speechmark/internal/config"
	"speechmark/internal/logging"
	"speechmark/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd runs the HTTP annotation service in the foreground.
func NewServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the annotation HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.Server.Port = port
			}
			logger, err := logging.Configure(cfg)
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, logger, ann)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	return cmd
}

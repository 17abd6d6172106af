package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/towngreen/churchsite/devserver"
)

func newDevserverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run the reference content service on SQLite",
		Long: `Run the reference content service on SQLite.

It serves the same API the site talks to, under /api, so the site and the
content tools can be developed without the production backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			cfg := devserver.Config{Logger: slog.Default()}
			cfg.Addr, _ = f.GetString("addr")
			cfg.DatabasePath, _ = f.GetString("db")
			cfg.UploadDir, _ = f.GetString("uploads")
			cfg.PublicURL, _ = f.GetString("public-url")
			cfg.AdminUsername, _ = f.GetString("admin-username")
			cfg.AdminPassword, _ = f.GetString("admin-password")
			cfg.TokenTTL, _ = f.GetDuration("token-ttl")

			srv, err := devserver.New(cfg)
			if err != nil {
				return err
			}
			return run(cmd.Context(), srv.Start, srv.Shutdown, srv.Close)
		},
	}
	cmd.Flags().String("addr", ":5000", "listen address")
	cmd.Flags().String("db", "data/devserver.db", "SQLite database path")
	cmd.Flags().String("uploads", "data/uploads", "directory uploads are written to")
	cmd.Flags().String("public-url", "", "prefix of returned upload URLs (default: request host)")
	cmd.Flags().String("admin-username", "admin", "admin account name")
	cmd.Flags().String("admin-password", "", "admin account password (required)")
	cmd.Flags().Duration("token-ttl", 12*time.Hour, "lifetime of issued tokens")
	return cmd
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/towngreen/churchsite"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the church website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			cfg := churchsite.SiteConfig{}
			cfg.Addr, _ = f.GetString("addr")
			cfg.URL, _ = f.GetString("site-url")
			cfg.Name, _ = f.GetString("site-name")
			cfg.Description, _ = f.GetString("site-description")
			cfg.APIURL, _ = f.GetString("api-url")
			cfg.SessionSecret, _ = f.GetString("session-secret")
			cfg.CookieSecure, _ = f.GetBool("cookie-secure")
			cfg.ListCacheTTL, _ = f.GetDuration("cache-ttl")
			staticDir, _ := f.GetString("static-dir")

			opts := []churchsite.Option{churchsite.WithLogger(slog.Default())}
			if staticDir != "" {
				opts = append(opts, churchsite.WithStaticDir(staticDir))
			}
			app := churchsite.New(cfg, opts...)
			return run(cmd.Context(), app.Start, app.Echo.Shutdown, app.Close)
		},
	}
	cmd.Flags().String("addr", ":3000", "listen address")
	cmd.Flags().String("site-url", "http://localhost:3000", "canonical site URL")
	cmd.Flags().String("site-name", "", "site name")
	cmd.Flags().String("site-description", "", "site description")
	cmd.Flags().String("session-secret", "", "admin session secret (required)")
	cmd.Flags().Bool("cookie-secure", false, "mark cookies Secure (set behind HTTPS)")
	cmd.Flags().Duration("cache-ttl", time.Minute, "public listing cache TTL")
	cmd.Flags().String("static-dir", "", "directory of extra assets served under /public")
	return cmd
}

// run starts a server and shuts it down gracefully on SIGINT or SIGTERM.
func run(parent context.Context, start func() error, shutdown func(context.Context) error, closeFn func() error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return start()
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-done:
			return nil
		}
		slog.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return shutdown(sctx)
	})
	err := g.Wait()
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

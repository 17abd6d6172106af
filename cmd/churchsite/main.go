// Command churchsite runs the church website, its reference backend, and
// the content tools admins use from a terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/towngreen/churchsite"
)

// Version information, set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "churchsite",
		Short:         "Church website and content tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Church website and content tools.

Configuration comes from flags, environment variables (prefix CHURCHSITE_),
a .env file, and an optional ./.churchsite config file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(cmd); err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("log-level")
			churchsite.InitLogger(os.Stderr, churchsite.ParseLevel(level))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.churchsite.yaml)")
	root.PersistentFlags().StringP("log-level", "l", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("api-url", "", "content service root, e.g. https://example.org/api")
	root.PersistentFlags().String("token", "", "admin bearer token for write commands")

	root.AddCommand(
		newServeCommand(),
		newDevserverCommand(),
		newLoginCommand(),
		newContentCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "churchsite %s (%s)\n", version, commit)
		},
	}
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

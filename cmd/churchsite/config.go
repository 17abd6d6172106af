package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/towngreen/churchsite"
	"github.com/towngreen/churchsite/api"
)

const defaultConfigFilename = ".churchsite"

// initializeConfig layers the config file and CHURCHSITE_* variables under
// the command's flags.
func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(defaultConfigFilename)
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	viper.SetEnvPrefix("CHURCHSITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	bindFlags(cmd)
	return nil
}

// bindFlags applies viper values to every flag the user did not set.
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", viper.Get(f.Name))); err != nil {
				slog.Warn("could not apply config value", "flag", f.Name, "err", err)
			}
		}
		if err := viper.BindPFlag(f.Name, f); err != nil {
			slog.Error("could not bind flag to viper", "flag", f.Name, "err", err)
		}
	})
}

// newClient builds the API client from --api-url and --token. requireToken
// fails early for commands that write.
func newClient(cmd *cobra.Command, requireToken bool) (*api.Client, error) {
	runtime, _ := cmd.Flags().GetString("api-url")
	base, source := api.ResolveBaseURL(runtime, churchsite.BuildAPIURL, "")
	slog.Debug("api configured", "url", base, "source", source)

	token, _ := cmd.Flags().GetString("token")
	if requireToken && token == "" {
		return nil, errors.New("a token is required: run `churchsite login` and set CHURCHSITE_TOKEN")
	}
	return api.New(api.Config{BaseURL: base, Token: token, Logger: slog.Default()})
}

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "picturebot",
		Short: "Responsive picture variants from a chat or the command line",
		Long: `Picturebot derives responsive image variants from a source image.

Styles describe the default image and the media conditioned sources of a
picture. Each candidate is rendered with ImageMagick and exposed as a srcset.
Higher density renditions can be replayed from any rendered variant.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return loadConfig(configFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newRetinaCmd())

	return cmd
}

func loadConfig(path string) error {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("handler.timeout", "2m")
	viper.SetDefault("storage.dir", "data")
	viper.SetDefault("storage.base_url", "")
	viper.SetDefault("picture.styles_file", "styles.yaml")
	viper.SetDefault("picture.concurrency", 4)
	viper.SetDefault("http.listen", ":8080")
	viper.SetDefault("redis.prefix", "picturebot:")
	viper.SetDefault("limiter.requests", 10)
	viper.SetDefault("limiter.window", "1m")

	viper.SetEnvPrefix("picturebot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("toml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		log.Debug().Msg("no config file found, using defaults and environment")
	case err != nil:
		return fmt.Errorf("could not read config file: %w", err)
	default:
		log.Debug().Str("path", viper.ConfigFileUsed()).Msg("read config file")
	}

	zerolog.SetGlobalLevel(logLevel(viper.GetString("bot.log_level")))

	return nil
}

func logLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

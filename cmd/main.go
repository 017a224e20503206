package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"document-indexer/internal/config"
)

const configFilePath = "./configs/config.yaml"

type globalOptions struct {
	configPath string
	debug      bool
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "docindex",
		Short: "Index documents into a retrieval memory and query it",
		Long: `docindex fetches local files and URLs, strips markup, splits the text into
fixed-size chunks and appends them to a memory store for retrieval.

Environment variables:
  CHUNK_SIZE           chunk size in characters (default 1500)
  MODEL                chat model for ask
  BASE_URL             OpenAI compatible endpoint for ask
  OPENROUTER_API_KEY   API key for ask
  DOCINDEX_*           any config key, e.g. DOCINDEX_STORE_BACKEND=bleve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", configFilePath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(indexCmd(opts))
	rootCmd.AddCommand(searchCmd(opts))
	rootCmd.AddCommand(askCmd(opts))
	rootCmd.AddCommand(clearCmd(opts))
	return rootCmd
}

// loadConfig reads the config file, tolerating a missing default file so the
// tool runs on environment variables alone.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg, nil
}

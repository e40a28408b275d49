// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubsum CLI.
// Subcommands: summarize (upload, search, filter, export in one pass),
// fetch (external author lookup), serve (HTTP API) and version.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubsum/internal/config"
	"github.com/pdiddy/pubsum/internal/logging"
	"github.com/pdiddy/pubsum/internal/secrets"
	"github.com/pdiddy/pubsum/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds values from .secrets/ and PUBSUM_* overrides.
	loadedSecrets secrets.Store
	appConfig     types.Config
	appLog        *slog.Logger
)

// errReported means the failure was already shown to the user as notices.
var errReported = errors.New("one or more steps failed")

var rootCmd = &cobra.Command{
	Use:   "pubsum",
	Short: "Summarize faculty publications from BibTeX, spreadsheets and OpenAlex",
	Long: `pubsum reads a BibTeX (.bib) or spreadsheet (.xlsx) bibliography, optionally
looks up an author's publications in OpenAlex, filters them by year and
exports the result as a spreadsheet, a Word document or CSL-YAML.

Run "pubsum serve" to expose the same steps over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg
		appLog = logging.New(cfg.Log, os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubsum.yaml or ~/.config/pubsum/pubsum.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubsum")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubsum"))
		}
	}
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: could not read config %s: %v\n", cfgFile, err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

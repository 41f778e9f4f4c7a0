// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-query CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-query/internal/logging"
	"github.com/pdiddy/pubmed-query/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds NCBI credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is configured from --verbose and --log-format before any command runs.
var logger = logging.Discard()

// rootCmd is the base command for the pubmed-query CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-query",
	Short: "Query PubMed and export the matching records",
	Long: `pubmed-query builds a PubMed search expression from structured constraints,
checks the number of matches against a ceiling, and exports the records of
small enough result sets to a spreadsheet.

NCBI asks every client to identify itself: set --tool and --email, the tool
and email config keys, or the ncbi-tool and ncbi-email files under .secrets/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		format, _ := cmd.Flags().GetString("log-format")
		logger = logging.New(verbose, format)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.WithField("keys", keys).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-query.yaml or ~/.config/pubmed-query/pubmed-query.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and decisions to stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-query")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-query"))
		}
	}

	viper.SetEnvPrefix("PUBMED_QUERY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithFields(logrus.Fields{"command": os.Args[1:]}).Debug("command failed")
		os.Exit(1)
	}
}

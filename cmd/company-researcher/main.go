// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the company-researcher CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/internal/secrets"
	"github.com/pdiddy/company-researcher/internal/store"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the company-researcher CLI.
var rootCmd = &cobra.Command{
	Use:   "company-researcher",
	Short: "Iterative web research and report generation for companies",
	Long: `company-researcher gathers information about a company from the web,
filters and extracts the relevant facts with a language model, and compiles
the findings into a structured analysis.

Each capability is a subcommand: research runs the research pipeline,
report generates a sectioned analysis report, images finds and describes
company imagery, and history browses past runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).Level(level)

		s, err := secrets.Load(".secrets/")
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
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./company-researcher.yaml or ~/.config/company-researcher/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("company-researcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "company-researcher"))
		}
	}

	viper.SetEnvPrefix("COMPANY_RESEARCHER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configuration from the config file,
// environment, and loaded secrets, in that precedence order.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			APIKey:         secrets.Get(loadedSecrets, "tavily-api-key", viper.GetString("search.api_key")),
			MaxResults:     viper.GetInt("search.max_results"),
			Depth:          types.SearchDepth(viper.GetString("search.depth")),
			ExcludeDomains: viper.GetStringSlice("search.exclude_domains"),
		},
		Fetch: types.FetchConfig{
			PDFTimeout: viper.GetDuration("fetch.pdf_timeout"),
		},
		AI: types.AIConfig{
			Model:       secrets.Get(loadedSecrets, "model-name", viper.GetString("ai.model")),
			VisionModel: viper.GetString("ai.vision_model"),
			APIKey:      secrets.Get(loadedSecrets, "openai-api-key", viper.GetString("ai.api_key")),
			BaseURL:     secrets.Get(loadedSecrets, "openai-base-url", viper.GetString("ai.base_url")),
			MaxRetries:  viper.GetInt("ai.max_retries"),
		},
		Research: types.ResearchConfig{
			Mode:           types.ResearchMode(viper.GetString("research.mode")),
			MaxRounds:      viper.GetInt("research.max_rounds"),
			MaxLinks:       viper.GetInt("research.max_links"),
			MaxExtractURLs: viper.GetInt("research.max_extract_urls"),
			MaxImages:      viper.GetInt("research.max_images"),
		},
		Store: types.StoreConfig{
			DataDir:    viper.GetString("store.data_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Report: types.ReportConfig{
			OutputDir: viper.GetString("report.output_dir"),
		},
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data"
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = filepath.Join("output", "reports")
	}
	cfg.Report.AIConfig = cfg.AI
	return cfg
}

// modelClient builds the language model client, or nil when no API key is
// configured. Entry points report the missing configuration themselves.
func modelClient(cfg types.AIConfig) llm.Client {
	client, err := llm.New(cfg)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			log.Warn().Err(err).Msg("model client unavailable")
		}
		return nil
	}
	return client
}

// openStore opens the history store, or nil when it cannot be opened.
// Research still runs without history.
func openStore(cfg types.StoreConfig) *store.Store {
	st, err := store.New(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("history store unavailable")
		return nil
	}
	return st
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-finder CLI.
// Implements: prd008-query-understanding, prd009-generative-assist,
//             prd010-citation-enrichment (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-finder/internal/secrets"
	"github.com/pdiddy/research-finder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// log is the shared logger; level is set from --verbose.
var log = logrus.New()

// rootCmd is the base command for the research-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "research-finder",
	Short: "Turn research questions into ranked, citation-enriched paper lists",
	Long: `research-finder answers free-text research questions against a local paper
index. A question is decomposed into topic, year, and citation constraints,
run against the index, enriched with citation counts from the local citation
service or OpenCitations, and returned ranked, optionally with an analysis
of the result set.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		log.SetOutput(os.Stderr)

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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-finder.yaml or ~/.config/research-finder/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-finder"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_FINDER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig overlays config-file values and secrets onto the
// documented defaults.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetString("store.db_path"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := viper.GetDuration("store.query_timeout"); v > 0 {
		cfg.Store.QueryTimeout = v
	}
	if v := viper.GetInt("store.max_retries"); v > 0 {
		cfg.Store.MaxRetries = v
	}

	if v := viper.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetInt("ai.max_tokens"); v > 0 {
		cfg.AI.MaxTokens = v
	}
	cfg.AI.APIKey = loadedSecrets.Get("anthropic-api-key", viper.GetString("ai.api_key"))

	if v := viper.GetString("citations.local_base_url"); v != "" {
		cfg.Citations.LocalBaseURL = v
	}
	if v := viper.GetString("citations.public_base_url"); v != "" {
		cfg.Citations.PublicBaseURL = v
	}
	if v := viper.GetInt("citations.workers"); v > 0 {
		cfg.Citations.Workers = v
	}
	if v := viper.GetDuration("citations.batch_deadline"); v > 0 {
		cfg.Citations.BatchDeadline = v
	}
	cfg.Citations.AccessToken = loadedSecrets.Get("opencitations-access-token", viper.GetString("citations.access_token"))

	if v := viper.GetInt("query.default_result_count"); v > 0 {
		cfg.Query.DefaultResultCount = v
	}
	if viper.IsSet("query.enable_rewrite") {
		cfg.Query.EnableRewrite = viper.GetBool("query.enable_rewrite")
	}
	if viper.IsSet("query.enable_analysis") {
		cfg.Query.EnableAnalysis = viper.GetBool("query.enable_analysis")
	}

	return cfg
}

// formatDate renders a pub date for table output, blank when unknown.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/company-researcher/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials and settings are configured",
	Long: `Status reports whether each required credential is present and prints
the effective non-secret settings. Secret values themselves are never
printed.`,
	RunE: runConfigStatus,
}

func init() {
	configCmd.AddCommand(configStatusCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigStatus(cmd *cobra.Command, args []string) error {
	status := secrets.Status(loadedSecrets)
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Credentials:")
	for _, k := range keys {
		state := "missing"
		if status[k] {
			state = "set"
		}
		fmt.Printf("  %-18s %s\n", k, state)
	}

	cfg := pipelineConfig()
	fmt.Println("\nSettings:")
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("  config file:       %s\n", used)
	}
	fmt.Printf("  research mode:     %s\n", orDefault(string(cfg.Research.Mode), "basic"))
	fmt.Printf("  search depth:      %s\n", orDefault(string(cfg.Search.Depth), "advanced"))
	fmt.Printf("  model:             %s\n", orDefault(cfg.AI.Model, "gpt-4o-mini"))
	fmt.Printf("  vision model:      %s\n", orDefault(cfg.AI.VisionModel, "gpt-4o"))
	fmt.Printf("  data directory:    %s\n", cfg.Store.DataDir)
	fmt.Printf("  report output:     %s\n", cfg.Report.OutputDir)
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback + " (default)"
	}
	return value
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/company-researcher/internal/store"
	"github.com/pdiddy/company-researcher/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past research runs (list, show, search, export)",
	Long: `History manages the local store of completed research runs. Use
subcommands to list recent runs, show one in full, search compiled content
with full-text queries, or export everything to YAML.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent research runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one research run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over past run content",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all runs to YAML",
	RunE:  runHistoryExport,
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 uses the store default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")
	historyShowCmd.Flags().Bool("json", false, "output the run as JSON")
	historySearchCmd.Flags().Int("limit", 0, "maximum runs to return (0 uses the store default)")
	historySearchCmd.Flags().Bool("json", false, "output runs as JSON")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historySearchCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStore() (*store.Store, error) {
	cfg := pipelineConfig()
	return store.New(cfg.Store)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := historyStore()
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := st.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	return printRuns(cmd, runs)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := historyStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("Run:     %s\nSubject: %s\nMode:    %s\nCreated: %s\n\n",
		run.ID, run.Subject, run.Mode, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(run.Content)
	if len(run.Sources) > 0 {
		fmt.Printf("\nSources (%d):\n", len(run.Sources))
		for i, src := range run.Sources {
			marker := ""
			if src.IsOfficial {
				marker = " [official]"
			}
			fmt.Printf("%d.%s %s\n   %s\n", i+1, marker, src.Title, src.URL)
		}
	}
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	st, err := historyStore()
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := st.SearchRuns(context.Background(), args[0], limit)
	if err != nil {
		return err
	}
	return printRuns(cmd, runs)
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	st, err := historyStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Println("Exported run history to the data directory as export.yaml")
	return nil
}

func printRuns(cmd *cobra.Command, runs []types.ResearchRun) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Printf("%-36s  %-25s  %-8s  %s\n", "ID", "Subject", "Mode", "Created")
	fmt.Println(strings.Repeat("-", 90))
	for _, run := range runs {
		subject := run.Subject
		if len(subject) > 25 {
			subject = subject[:22] + "..."
		}
		fmt.Printf("%-36s  %-25s  %-8s  %s\n",
			run.ID, subject, run.Mode, run.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d runs\n", len(runs))
	return nil
}

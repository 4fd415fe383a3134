// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/company-researcher/internal/research"
	"github.com/pdiddy/company-researcher/internal/store"
	"github.com/pdiddy/company-researcher/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [company]",
	Short: "Generate a sectioned analysis report from researched content",
	Long: `Report turns previously researched content into a structured company
analysis. The input comes from a prior run in the history store (--run),
a file (--input), or a fresh research pass when neither is given.

Sections are selected by key; run "company-researcher report --list-sections"
to see them. Reports are written to the output directory with a YAML
metadata sidecar.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("run", "", "history run id to report on")
	reportCmd.Flags().String("input", "", "file containing researched content")
	reportCmd.Flags().String("sections", "", "report sections to include (comma-separated keys)")
	reportCmd.Flags().Bool("list-sections", false, "list available section keys and exit")
	reportCmd.Flags().Bool("json", false, "output the full result envelope as JSON")
	reportCmd.Flags().Bool("show-log", false, "print the process log after the result")
	reportCmd.Flags().String("log-file", "", "write the process log to a YAML file")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list-sections"); list {
		for _, s := range types.ReportSections {
			fmt.Printf("%-20s  %s\n", s, types.SectionTitles[s])
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("company name required")
	}
	subject := args[0]

	sectionsFlag, _ := cmd.Flags().GetString("sections")
	sections, err := parseSections(sectionsFlag)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	st := openStore(cfg.Store)
	if st != nil {
		defer st.Close()
	}

	svc := research.NewService(cfg, modelClient(cfg.AI), st)
	defer svc.Close()

	info, err := reportInput(cmd, svc, st, subject, sections)
	if err != nil {
		return err
	}

	result := svc.GenerateReport(context.Background(), subject, info, sections)
	return printResult(cmd, result)
}

// reportInput resolves the researched content to report on, preferring an
// explicit run id, then an input file, then a fresh research pass.
func reportInput(cmd *cobra.Command, svc *research.Service, st *store.Store, subject string, sections map[string]bool) (string, error) {
	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		if st == nil {
			return "", fmt.Errorf("history store unavailable")
		}
		run, err := st.GetRun(context.Background(), runID)
		if err != nil {
			return "", err
		}
		return run.Content, nil
	}

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	}

	fmt.Fprintf(os.Stderr, "No input given; researching %s first\n", subject)
	result := svc.Research(context.Background(), subject, sections)
	if !result.Success {
		return "", fmt.Errorf("%s", result.Message)
	}
	if strings.TrimSpace(result.Data) == "" {
		return "", fmt.Errorf("research produced no content for %s", subject)
	}
	return result.Data, nil
}

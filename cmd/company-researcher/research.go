// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/company-researcher/internal/research"
	"github.com/pdiddy/company-researcher/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [company]",
	Short: "Research a company on the web and compile the findings",
	Long: `Research gathers information about a company through iterative web
search, filters pages for relevance, extracts facts with a language model,
and prints the compiled findings.

Basic mode runs up to three search rounds, planning follow-up queries from
what earlier rounds found. Detailed mode runs a single wider fan-out with
per-source quality scoring and topic-bucketed compilation.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("mode", "", "research mode: basic or detailed (default from config)")
	researchCmd.Flags().String("sections", "", "report sections to steer queries toward (comma-separated keys)")
	researchCmd.Flags().Bool("quick", false, "single-query lookup without the full pipeline")
	researchCmd.Flags().Bool("json", false, "output the full result envelope as JSON")
	researchCmd.Flags().Bool("show-log", false, "print the process log after the result")
	researchCmd.Flags().String("log-file", "", "write the process log to a YAML file")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	subject := args[0]
	cfg := pipelineConfig()

	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Research.Mode = types.ResearchMode(mode)
	}

	st := openStore(cfg.Store)
	if st != nil {
		defer st.Close()
	}

	svc := research.NewService(cfg, modelClient(cfg.AI), st)
	defer svc.Close()

	var result research.Result
	if quick, _ := cmd.Flags().GetBool("quick"); quick {
		result = svc.GetCompanyInfo(context.Background(), subject)
	} else {
		sectionsFlag, _ := cmd.Flags().GetString("sections")
		sections, err := parseSections(sectionsFlag)
		if err != nil {
			return err
		}
		result = svc.Research(context.Background(), subject, sections)
	}

	return printResult(cmd, result)
}

// parseSections turns a comma-separated key list into the selection map the
// service expects. Unknown keys are rejected here so a typo fails loudly.
func parseSections(flag string) (map[string]bool, error) {
	if flag == "" {
		return nil, nil
	}
	sections := make(map[string]bool)
	for _, key := range strings.Split(flag, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !types.IsValidSection(key) {
			return nil, fmt.Errorf("unknown report section %q", key)
		}
		sections[key] = true
	}
	return sections, nil
}

func printResult(cmd *cobra.Command, result research.Result) error {
	if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
		if err := writeProcessLog(logFile, result.ProcessLog); err != nil {
			return err
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	if result.Data != "" {
		fmt.Println(result.Data)
	}
	for _, img := range result.Images {
		fmt.Printf("- %s\n  %s\n", img.Description, img.URL)
	}
	if result.Message != "" {
		fmt.Fprintln(os.Stderr, result.Message)
	}
	if result.RunID != "" {
		fmt.Fprintf(os.Stderr, "Saved as run %s\n", result.RunID)
	}

	if showLog, _ := cmd.Flags().GetBool("show-log"); showLog {
		printProcessLog(result.ProcessLog)
	}
	return nil
}

func writeProcessLog(path string, plog *types.ProcessLog) error {
	data, err := yaml.Marshal(plog)
	if err != nil {
		return fmt.Errorf("marshaling process log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing process log: %w", err)
	}
	return nil
}

func printProcessLog(plog *types.ProcessLog) {
	entries := plog.Entries()
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "\nProcess log:")
	for i, e := range entries {
		fmt.Fprintf(os.Stderr, "%3d. %s", i+1, e.Step)
		if len(e.Fields) > 0 {
			detail, err := json.Marshal(e.Fields)
			if err == nil {
				fmt.Fprintf(os.Stderr, " %s", detail)
			}
		}
		fmt.Fprintln(os.Stderr)
	}
}

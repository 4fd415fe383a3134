// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns accumulated research findings into a sectioned
// analysis report and writes it to disk with a metadata sidecar.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/pkg/types"
)

const systemPrompt = "You are a corporate analysis expert."

// Generator produces analysis reports from compiled research content.
type Generator struct {
	LLM    llm.Client
	Config types.ReportConfig
}

func New(client llm.Client, cfg types.ReportConfig) *Generator {
	return &Generator{LLM: client, Config: cfg}
}

// Generate builds a report for subject from the researched info, covering
// the requested sections. Unknown section keys are ignored; an empty
// selection falls back to the default core sections. Sections the source
// material cannot support are omitted rather than padded with placeholders.
func (g *Generator) Generate(ctx context.Context, subject, info string, sections map[string]bool, plog *types.ProcessLog) (string, error) {
	selected := selectedSections(sections)
	plog.Append("report_start", map[string]any{
		"subject":  subject,
		"sections": selected,
	})

	resp, err := g.LLM.Complete(ctx, systemPrompt, reportPrompt(subject, info, selected))
	if err != nil {
		plog.AppendError("report_error", err, map[string]any{"subject": subject})
		return "", fmt.Errorf("generating report for %s: %w", subject, err)
	}

	formatted := FormatReport(resp)
	plog.Append("report_complete", map[string]any{
		"subject": subject,
		"length":  len(formatted),
	})
	return formatted, nil
}

// selectedSections filters the request down to known keys in report order.
func selectedSections(sections map[string]bool) []string {
	var selected []string
	for key, include := range sections {
		if include && types.IsValidSection(key) {
			selected = append(selected, key)
		}
	}
	if len(selected) == 0 {
		for _, s := range types.DefaultSections {
			selected = append(selected, string(s))
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		return sectionOrder(selected[i]) < sectionOrder(selected[j])
	})
	return selected
}

func sectionOrder(key string) int {
	for i, s := range types.ReportSections {
		if string(s) == key {
			return i
		}
	}
	return len(types.ReportSections)
}

func reportPrompt(subject, info string, selected []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a company analysis report for %s based on the information below.\n\n", subject)
	fmt.Fprintf(&b, "<company information>\n%s\n</company information>\n\n", info)

	b.WriteString("A full company analysis report can contain these sections:\n")
	for _, s := range types.ReportSections {
		fmt.Fprintf(&b, "- %s\n", types.SectionTitles[s])
	}

	b.WriteString("\nInclude the following sections in this report: ")
	titles := make([]string, 0, len(selected))
	for _, key := range selected {
		titles = append(titles, types.SectionTitles[types.ReportSection(key)])
	}
	b.WriteString(strings.Join(titles, "; "))
	b.WriteString("\n\nFollow these rules:\n")
	b.WriteString("1. If there is no information for a section, omit the section entirely instead of writing \"no information\".\n")
	b.WriteString("2. Prioritize information relevant to the requested sections.\n")
	b.WriteString("3. Base the analysis on concrete data from the provided information.\n")
	b.WriteString("4. Prefer facts sourced from the company's own website when present.\n")
	b.WriteString("5. Write the report in markdown.\n")
	b.WriteString("\nEnd the report with a short summary of the company's distinguishing points.\n")
	return b.String()
}

// metadata is the YAML sidecar written next to each report file.
type metadata struct {
	Subject     string    `yaml:"subject"`
	Model       string    `yaml:"model,omitempty"`
	Sections    []string  `yaml:"sections"`
	GeneratedAt time.Time `yaml:"generated_at"`
	ReportFile  string    `yaml:"report_file"`
}

// Save writes the report and its metadata sidecar under the configured
// output directory and returns the report path.
func (g *Generator) Save(subject, content string, sections map[string]bool) (string, error) {
	outDir := g.Config.OutputDir
	if outDir == "" {
		outDir = filepath.Join("output", "reports")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	base := fmt.Sprintf("%s-%s", slug(subject), stamp)
	reportPath := filepath.Join(outDir, base+".md")

	if err := os.WriteFile(reportPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	meta := metadata{
		Subject:     subject,
		Model:       g.Config.Model,
		Sections:    selectedSections(sections),
		GeneratedAt: time.Now().UTC(),
		ReportFile:  filepath.Base(reportPath),
	}
	metaData, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	metaPath := filepath.Join(outDir, base+".yaml")
	if err := os.WriteFile(metaPath, metaData, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	log.Info().Str("path", reportPath).Str("subject", subject).Msg("report written")
	return reportPath, nil
}

// slug normalizes a subject name into a filesystem-safe base name.
func slug(subject string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, subject)
	mapped = strings.Trim(mapped, "-")
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	if mapped == "" {
		mapped = "report"
	}
	return mapped
}

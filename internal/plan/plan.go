// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan generates search queries for a research subject and decides
// whether accumulated findings warrant further searching. The generative
// backend proposes queries; every failure path degrades to a fixed
// deterministic set so the orchestrator stays single-path.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/pkg/types"
)

const (
	maxQueries             = 10
	maxContinuationQueries = 4
)

const systemPrompt = "You are a corporate analysis expert."

// Planner proposes and gates search queries.
type Planner struct {
	LLM llm.Client
}

// New builds a Planner.
func New(client llm.Client) *Planner {
	return &Planner{LLM: client}
}

// BaselineQueries is the fixed set of subject-qualified category queries
// every generated batch is unioned with, and the fallback when generation
// fails.
func BaselineQueries(subject string) []string {
	return []string{
		subject + " representative director profile official",
		subject + " company profile corporate overview official site",
		subject + " founding year capital employees official",
		subject + " corporate philosophy mission vision values",
		subject + " business lines main services",
		subject + " financial results earnings IR",
	}
}

// sectionHints maps report-section keys to the query phrasing used when the
// caller selects them.
var sectionHints = map[types.ReportSection]string{
	types.SectionCompanyOverview:   "company profile and history",
	types.SectionManagement:        "representative director and management team",
	types.SectionPhilosophy:        "corporate philosophy, mission, and vision",
	types.SectionEstablishment:     "founding year, capital, and locations",
	types.SectionBusiness:          "main business lines and services",
	types.SectionPerformance:       "revenue and operating profit",
	types.SectionGrowth:            "growth and expansion plans",
	types.SectionEconomicImpact:    "sensitivity to economic conditions",
	types.SectionCompetitiveness:   "competitive strengths and technology",
	types.SectionCulture:           "corporate culture and workplace",
	types.SectionCareerPath:        "career development and promotion",
	types.SectionJobTypes:          "job types and required skills",
	types.SectionWorkingConditions: "salary, hours, and benefits",
	types.SectionCSR:               "CSR and diversity initiatives",
	types.SectionRelatedCompanies:  "group and partner companies",
}

// selectedHints renders the hint list for the sections the caller wants,
// defaulting to the core subset when nothing is selected.
func selectedHints(sections map[string]bool) []string {
	var keys []types.ReportSection
	for _, key := range types.ReportSections {
		if sections[string(key)] {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		keys = types.DefaultSections
	}

	hints := make([]string, 0, len(keys))
	for _, key := range keys {
		hints = append(hints, sectionHints[key])
	}
	return hints
}

// GenerateQueries returns 4-10 search queries for subject, each containing
// the subject name. The backend's proposals are unioned with the fixed
// baseline, deduplicated, and capped; any backend or parse failure falls
// back to the baseline alone.
func (p *Planner) GenerateQueries(ctx context.Context, subject string, sections map[string]bool, plog *types.ProcessLog) []string {
	hints := selectedHints(sections)

	user := fmt.Sprintf(`Company: %s

Generate the 5 most effective web search queries for collecting the following
information about this company:

- %s

Favor queries that surface the official site and reputable business media.
User-editable sites such as Wikipedia are unreliable; avoid queries that
target them.

Return the queries as a JSON array of strings, for example:
["%s representative director profile", "%s company profile official"]

Return only the array, no other text.`,
		subject, strings.Join(hints, "\n- "), subject, subject)

	resp, err := p.LLM.Complete(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("query generation failed")
		plog.AppendError("query_generation_error", err, map[string]any{"subject": subject})
		return BaselineQueries(subject)
	}

	plog.Append("query_generation", map[string]any{
		"subject": subject,
		"output":  types.Preview(resp, 200),
	})

	generated, err := DecodeList(resp)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("no query list in backend response")
		return BaselineQueries(subject)
	}

	return mergeQueries(subject, generated)
}

// mergeQueries unions the baseline with generated queries, qualifying each
// generated query with the subject name when the backend omitted it,
// deduplicating in order, and capping at maxQueries.
func mergeQueries(subject string, generated []string) []string {
	seen := make(map[string]bool)
	var merged []string

	add := func(q string) {
		if !strings.Contains(strings.ToLower(q), strings.ToLower(subject)) {
			q = subject + " " + q
		}
		if seen[q] || len(merged) >= maxQueries {
			return
		}
		seen[q] = true
		merged = append(merged, q)
	}

	for _, q := range BaselineQueries(subject) {
		add(q)
	}
	for _, q := range generated {
		add(q)
	}
	return merged
}

// defaultTargetKeywords steers continuation when the caller selected no sections.
var defaultTargetKeywords = []string{
	"leadership and representative director",
	"founding year and capital",
	"main business and services",
	"corporate philosophy",
}

// NextQueries decides whether more searching is warranted. It returns up to
// four new queries targeting still-missing topics, or nil to stop. Malformed
// backend output means stop: a decode failure must not keep the loop alive.
func (p *Planner) NextQueries(ctx context.Context, subject string, history []string, contextBlocks []string, sections map[string]bool, plog *types.ProcessLog) []string {
	targets := selectedHints(sections)
	if len(targets) == 0 {
		targets = defaultTargetKeywords
	}

	user := fmt.Sprintf(`Company: %s

Queries already searched:
- %s

Information collected so far:
%s

Check whether the collected information still lacks any of these topics:
- %s

If important topics are missing, return up to 4 new search queries as a JSON
array of strings. If the collected information is sufficient, return exactly
"". Return nothing else.`,
		subject,
		strings.Join(history, "\n- "),
		strings.Join(contextBlocks, "\n\n"),
		strings.Join(targets, "\n- "))

	resp, err := p.LLM.Complete(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("continuation planning failed")
		plog.AppendError("continuation_error", err, map[string]any{"subject": subject})
		return nil
	}

	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(resp), `"`))
	if trimmed == "" {
		plog.Append("continuation", map[string]any{"decision": "stop"})
		return nil
	}

	queries, err := DecodeList(resp)
	if err != nil {
		// Safer default: malformed output never extends the loop.
		plog.Append("continuation", map[string]any{"decision": "stop", "reason": "unparsable response"})
		return nil
	}

	if len(queries) > maxContinuationQueries {
		queries = queries[:maxContinuationQueries]
	}
	for i, q := range queries {
		if !strings.Contains(strings.ToLower(q), strings.ToLower(subject)) {
			queries[i] = subject + " " + q
		}
	}

	plog.Append("continuation", map[string]any{
		"decision": "continue",
		"queries":  queries,
	})
	return queries
}

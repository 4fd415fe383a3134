// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the iterative research loop: generate queries,
// search, fetch, filter, extract, decide whether to continue, and hand the
// accumulated findings to compilation. The round cap is the liveness
// guarantee — the loop terminates within MaxRounds no matter what the
// continuation planner asks for.
package research

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/analyze"
	"github.com/pdiddy/company-researcher/internal/fetch"
	"github.com/pdiddy/company-researcher/internal/plan"
	"github.com/pdiddy/company-researcher/internal/websearch"
	"github.com/pdiddy/company-researcher/pkg/types"
)

const (
	defaultMaxRounds   = 3
	defaultMaxLinks    = 10
	defaultMaxExtracts = 5
)

// Orchestrator ties the research stages together for one invocation at a
// time. All work within an invocation is sequential; the only shared state
// is the backend connection owned by the websearch handle.
type Orchestrator struct {
	Search    *websearch.Client
	Fetcher   *fetch.Fetcher
	Analyzer  *analyze.Analyzer
	Planner   *plan.Planner
	SearchCfg types.SearchConfig
	Config    types.ResearchConfig
}

// link is a deduplicated URL together with the query that first surfaced
// it. First-claim ownership: issuance order decides which query is recorded.
type link struct {
	url   string
	title string
	query string
}

func (o *Orchestrator) maxRounds() int {
	if o.Config.MaxRounds > 0 {
		return o.Config.MaxRounds
	}
	return defaultMaxRounds
}

func (o *Orchestrator) maxLinks() int {
	if o.Config.MaxLinks > 0 {
		return o.Config.MaxLinks
	}
	return defaultMaxLinks
}

// Run executes the iterative free-text research loop and returns the
// accumulated findings as one text block. It never returns an empty string:
// when every round yields nothing, a generic subject description is
// synthesized instead.
func (o *Orchestrator) Run(ctx context.Context, subject string, sections map[string]bool, plog *types.ProcessLog) string {
	start := time.Now()
	plog.Append("research_start", map[string]any{"subject": subject})

	queries := o.Planner.GenerateQueries(ctx, subject, sections, plog)
	history := append([]string(nil), queries...)

	var blocks []string
	seen := make(map[string]bool)
	pending := queries

	for round := 1; round <= o.maxRounds(); round++ {
		links := o.searchRound(ctx, pending, seen, plog)
		added := o.extractRound(ctx, subject, links, &blocks, plog)

		plog.Append("round_complete", map[string]any{
			"round":      round,
			"links":      len(links),
			"new_blocks": added,
		})
		if added == 0 {
			// An empty round does not stop the loop; only the planner or
			// the round cap can.
			log.Info().Int("round", round).Str("subject", subject).Msg("round produced no new context")
		}

		if round == o.maxRounds() {
			break
		}

		next := o.Planner.NextQueries(ctx, subject, history, blocks, sections, plog)
		if len(next) == 0 {
			break
		}
		pending = mergeHistory(&history, next)
	}

	plog.Append("research_complete", map[string]any{
		"subject":    subject,
		"queries":    len(history),
		"blocks":     len(blocks),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if len(blocks) == 0 {
		plog.Append("fallback_description", map[string]any{"subject": subject})
		return o.Analyzer.FallbackDescription(ctx, subject)
	}
	return strings.Join(blocks, "\n\n")
}

// searchRound fans out over the pending queries and returns this round's
// unique links, capped at MaxLinks. Previously seen URLs are skipped; the
// first query to surface a URL is recorded as its source query.
func (o *Orchestrator) searchRound(ctx context.Context, pending []string, seen map[string]bool, plog *types.ProcessLog) []link {
	opts := websearch.SearchOptions{
		Depth:          o.SearchCfg.Depth,
		MaxResults:     o.SearchCfg.MaxResults,
		ExcludeDomains: o.SearchCfg.ExcludeDomains,
	}

	var links []link
	for _, q := range pending {
		for _, entry := range o.Search.WebSearch(ctx, q, opts, plog) {
			if seen[entry.URL] {
				continue
			}
			seen[entry.URL] = true
			links = append(links, link{url: entry.URL, title: entry.Title, query: q})
		}
	}

	if len(links) > o.maxLinks() {
		links = links[:o.maxLinks()]
	}
	return links
}

// extractRound fetches, gates, and extracts every link sequentially,
// appending non-empty fact blocks. Returns how many blocks this round added.
func (o *Orchestrator) extractRound(ctx context.Context, subject string, links []link, blocks *[]string, plog *types.ProcessLog) int {
	added := 0
	for _, l := range links {
		text := o.Fetcher.Fetch(ctx, l.url)
		if text == "" {
			continue
		}
		if !o.Analyzer.Relevant(ctx, subject, text) {
			plog.Append("page_skipped", map[string]any{"url": l.url, "reason": "not useful"})
			continue
		}

		facts := o.Analyzer.ExtractFacts(ctx, subject, l.query, text)
		if facts == "" {
			continue
		}

		plog.Append("facts_extracted", map[string]any{
			"url":     l.url,
			"query":   l.query,
			"preview": types.Preview(facts, 200),
		})
		*blocks = append(*blocks, facts)
		added++
	}
	return added
}

// mergeHistory appends the queries not already in history and returns the
// newly added ones as the next round's pending set.
func mergeHistory(history *[]string, next []string) []string {
	known := make(map[string]bool, len(*history))
	for _, q := range *history {
		known[q] = true
	}

	var fresh []string
	for _, q := range next {
		if known[q] {
			continue
		}
		known[q] = true
		*history = append(*history, q)
		fresh = append(fresh, q)
	}
	return fresh
}

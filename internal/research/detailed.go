// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/compile"
	"github.com/pdiddy/company-researcher/internal/vision"
	"github.com/pdiddy/company-researcher/internal/websearch"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// Detailed runs the structured variant: search fan-out, batch content
// extraction, per-page scored analysis, and topic-bucketed compilation.
// Pages scoring below the quality gate are dropped by the analyzer; an
// empty survivor set still compiles into a report with fallback sections.
// The surviving sources are returned alongside the compiled result so the
// caller can persist them with the run.
func (o *Orchestrator) Detailed(ctx context.Context, subject string, annotator *vision.Annotator, plog *types.ProcessLog) (types.CompiledResult, []types.AnalyzedSource) {
	start := time.Now()
	plog.Append("detailed_start", map[string]any{"subject": subject})

	queries := detailQueries(subject)
	candidates := o.collectCandidates(ctx, subject, queries, plog)
	pages := o.extractCandidates(ctx, subject, candidates, plog)

	var sources []types.AnalyzedSource
	for _, page := range pages {
		if src := o.Analyzer.AnalyzeContent(ctx, subject, page, plog); src != nil {
			sources = append(sources, *src)
		}
	}

	result := compile.Compile(subject, sources, plog)

	if annotator != nil && len(result.Images) > 0 {
		descs := annotator.Annotate(ctx, subject, result.Images, plog)
		if len(descs) > 0 {
			result.Content += "\n\n" + renderImageSection(descs)
		}
	}

	plog.Append("detailed_complete", map[string]any{
		"subject":    subject,
		"pages":      len(pages),
		"sources":    len(sources),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return result, sources
}

// detailQueries is the fixed query slate for the structured variant. The
// iterative variant plans with the model; this one trades adaptivity for
// predictable coverage of the compile topics.
func detailQueries(subject string) []string {
	return []string{
		subject + " company profile",
		subject + " management directors officers",
		subject + " corporate philosophy mission",
		subject + " business products services",
		subject + " financial results performance",
	}
}

// collectCandidates fans out over the query slate, deduplicates by URL,
// caps the pool, and orders official sites first so they survive the
// extraction cap.
func (o *Orchestrator) collectCandidates(ctx context.Context, subject string, queries []string, plog *types.ProcessLog) []types.SearchResultEntry {
	opts := websearch.SearchOptions{
		Depth:          o.SearchCfg.Depth,
		MaxResults:     o.SearchCfg.MaxResults,
		ExcludeDomains: o.SearchCfg.ExcludeDomains,
	}

	seen := make(map[string]bool)
	var pool []types.SearchResultEntry
	for _, q := range queries {
		for _, entry := range o.Search.WebSearch(ctx, q, opts, plog) {
			if seen[entry.URL] {
				continue
			}
			seen[entry.URL] = true
			pool = append(pool, entry)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return websearch.IsOfficialSite(pool[i].URL, subject) && !websearch.IsOfficialSite(pool[j].URL, subject)
	})

	if len(pool) > o.maxLinks() {
		pool = pool[:o.maxLinks()]
	}
	plog.Append("candidates_collected", map[string]any{"subject": subject, "count": len(pool)})
	return pool
}

func (o *Orchestrator) maxExtracts() int {
	if o.Config.MaxExtractURLs > 0 {
		return o.Config.MaxExtractURLs
	}
	return defaultMaxExtracts
}

// extractCandidates pulls full content for the top candidates in one batch
// call, tagging each page with its official-site flag for ranking later.
func (o *Orchestrator) extractCandidates(ctx context.Context, subject string, candidates []types.SearchResultEntry, plog *types.ProcessLog) []types.FetchedContent {
	if len(candidates) == 0 {
		return nil
	}

	n := o.maxExtracts()
	if len(candidates) < n {
		n = len(candidates)
	}
	urls := make([]string, 0, n)
	titles := make(map[string]string, n)
	for _, c := range candidates[:n] {
		urls = append(urls, c.URL)
		titles[c.URL] = c.Title
	}

	pages, err := o.Search.Extract(ctx, urls, true)
	if err != nil {
		log.Error().Err(err).Int("urls", len(urls)).Msg("content extraction failed")
		plog.AppendError("extract_error", err, map[string]any{"urls": len(urls)})
		return nil
	}

	for i := range pages {
		if pages[i].Title == "" {
			pages[i].Title = titles[pages[i].URL]
		}
		pages[i].IsOfficial = websearch.IsOfficialSite(pages[i].URL, subject)
	}
	plog.Append("content_extracted", map[string]any{"pages": len(pages)})
	return pages
}

func renderImageSection(descs []types.ImageDescription) string {
	out := "## Images\n"
	for _, d := range descs {
		out += "\n- " + d.Description + "\n  " + d.URL
	}
	return out
}

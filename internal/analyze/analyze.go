// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze judges whether fetched page text is useful for a research
// subject and extracts facts from it. Two extraction variants exist: a
// free-text block used by the iterative loop and a structured, scored
// record used by detailed research. They are alternative implementations of
// the same capability, selected by configuration, and are never merged —
// bucket compilation only understands the structured form.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/llm"
)

// MaxPromptChars caps how much page text is handed to the generative
// backend in one call.
const MaxPromptChars = 20000

const systemPrompt = "You are a corporate analysis expert."

// Analyzer runs relevance and extraction prompts against the generative backend.
type Analyzer struct {
	LLM llm.Client
}

// New builds an Analyzer.
func New(client llm.Client) *Analyzer {
	return &Analyzer{LLM: client}
}

// truncate caps text at MaxPromptChars, cutting on a rune boundary so
// multi-byte page text stays valid UTF-8.
func truncate(text string) string {
	if len(text) <= MaxPromptChars {
		return text
	}
	cut := MaxPromptChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// Relevant is the cheap gate run before extraction: it asks the backend for
// a strict yes/no on whether the page is useful for researching subject.
// Ambiguous answers and backend failures count as "no" so a flaky backend
// can only ever shrink the extraction workload.
func (a *Analyzer) Relevant(ctx context.Context, subject, content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	user := fmt.Sprintf(`Company: %s

Below is the text of a web page. Decide whether it is useful for researching this company.
Treat basic facts as especially important: leadership names, founding year, capital, and business description.
Answer with exactly "yes" or "no" and nothing else.

Page text:
%s`, subject, truncate(content))

	resp, err := a.LLM.Complete(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("relevance check failed")
		return false
	}
	return parseYesNo(resp)
}

// parseYesNo accepts the exact tokens or text containing an affirmative or
// negative marker; anything ambiguous is "no".
func parseYesNo(resp string) bool {
	answer := strings.ToLower(strings.TrimSpace(resp))
	switch {
	case answer == "yes" || strings.HasPrefix(answer, "yes"):
		return true
	case answer == "no" || strings.HasPrefix(answer, "no"):
		return false
	case strings.Contains(answer, "yes"):
		return true
	default:
		return false
	}
}

// ExtractFacts pulls a free-text block of facts about subject out of page
// text surfaced by query. Only explicitly stated facts are extracted;
// unknown headings are omitted rather than filled with placeholders.
// Returns "" on backend failure or when nothing was extracted.
func (a *Analyzer) ExtractFacts(ctx context.Context, subject, query, content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	user := fmt.Sprintf(`Company: %s
Search query that surfaced this page: %s

Extract every fact about this company that the page states explicitly. Organize
the facts under these headings, in this order, skipping any heading the page
says nothing about (do not write "no information"):

- Leadership
- Founding year
- Capital
- Headquarters
- Business and products
- Philosophy
- Financial performance

Do not speculate or infer. Copy only what the page states.

Page text:
%s`, subject, query, truncate(content))

	resp, err := a.LLM.Complete(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Str("query", query).Msg("fact extraction failed")
		return ""
	}
	return strings.TrimSpace(resp)
}

// FallbackDescription produces a one-paragraph generic description of
// subject. The orchestrator uses it when every round yielded nothing, so
// the caller never receives an empty result. On backend failure a fixed
// sentence is returned.
func (a *Analyzer) FallbackDescription(ctx context.Context, subject string) string {
	user := fmt.Sprintf(`Write one short paragraph describing the company %q in general terms.
If you know nothing specific about it, describe what kind of company the name suggests.
Do not invent concrete figures.`, subject)

	resp, err := a.LLM.Complete(ctx, systemPrompt, user)
	if err != nil || strings.TrimSpace(resp) == "" {
		return fmt.Sprintf("No detailed information about %s could be collected. Check the company's official site for current details.", subject)
	}
	return strings.TrimSpace(resp)
}

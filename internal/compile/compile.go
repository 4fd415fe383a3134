// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile merges scored per-source research records into the final
// narrative: sources are ranked official-first, near-duplicate statements
// are dropped per topic bucket, and mandatory sections always render.
package compile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/company-researcher/pkg/types"
)

const (
	// minScore is the quality gate: records with relevance or reliability
	// under this value contribute nothing, even if upstream filtering let
	// them through.
	minScore = 3

	// officialBonus dominates any relevance+reliability sum (max 20), so
	// official sites always rank above non-official ones.
	officialBonus = 100

	// duplicateThreshold is the word-overlap above which a statement is
	// dropped as a near-duplicate of an already accepted one.
	duplicateThreshold = 0.7

	maxSources = 5
	maxImages  = 5
)

// sectionTitle maps compiler buckets to rendered headings.
var sectionTitle = map[types.TopicCategory]string{
	types.TopicManagement:     "Management",
	types.TopicCompanyProfile: "Company profile",
	types.TopicPhilosophy:     "Corporate philosophy",
	types.TopicBusiness:       "Business",
	types.TopicPerformance:    "Performance",
	types.TopicOther:          "Other information",
}

// fallbackSentence renders the fixed placeholder for sections that must
// appear even without content.
func fallbackSentence(subject string, topic types.TopicCategory) string {
	switch topic {
	case types.TopicManagement:
		return fmt.Sprintf("Specific information about %s's management team is not currently available. Check the company's official site for the latest details.", subject)
	case types.TopicCompanyProfile:
		return fmt.Sprintf("Basic information such as %s's founding year, capital, and employee count is not currently available. Check the company's official site for the latest details.", subject)
	case types.TopicPhilosophy:
		return fmt.Sprintf("No information about %s's corporate philosophy, mission, or vision was found.", subject)
	case types.TopicBusiness:
		return fmt.Sprintf("Detailed information about %s's main business lines and services is not currently available. Check the company's official site for the latest details.", subject)
	default:
		return ""
	}
}

// mandatoryTopics always render a heading; the remaining topics render only
// when they collected content.
var mandatoryTopics = map[types.TopicCategory]bool{
	types.TopicManagement:     true,
	types.TopicCompanyProfile: true,
	types.TopicPhilosophy:     true,
	types.TopicBusiness:       true,
}

// rankSources orders records best-first: official-site flag dominates, then
// the relevance+reliability sum. The sort is stable so ties keep their
// original order.
func rankSources(sources []types.AnalyzedSource) []types.AnalyzedSource {
	ranked := append([]types.AnalyzedSource(nil), sources...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return compositeScore(ranked[i]) > compositeScore(ranked[j])
	})
	return ranked
}

func compositeScore(s types.AnalyzedSource) int {
	score := s.Score()
	if s.IsOfficial {
		score += officialBonus
	}
	return score
}

// Compile assembles the final narrative and image list from analyzed
// sources. The score gate (relevance/reliability >= 3) is applied upstream
// too, but re-applied here: a low-scored record never reaches the output
// regardless of where it came from.
func Compile(subject string, sources []types.AnalyzedSource, plog *types.ProcessLog) types.CompiledResult {
	eligible := make([]types.AnalyzedSource, 0, len(sources))
	for _, src := range sources {
		if src.Relevance < minScore || src.Reliability < minScore {
			continue
		}
		eligible = append(eligible, src)
	}
	ranked := rankSources(eligible)

	buckets := make(map[types.TopicCategory][]string, len(types.CompileTopics))
	var images []string
	seenImage := make(map[string]bool)

	for _, src := range ranked {
		for _, topic := range types.CompileTopics {
			text := strings.TrimSpace(src.ExtractedInfo[topic])
			if text == "" {
				continue
			}
			if isDuplicate(text, buckets[topic]) {
				continue
			}
			buckets[topic] = append(buckets[topic], text)
		}

		for _, img := range src.Images {
			if img == "" || seenImage[img] {
				continue
			}
			seenImage[img] = true
			images = append(images, img)
		}
	}

	if len(images) > maxImages {
		images = images[:maxImages]
	}

	var sections []string
	sections = append(sections, fmt.Sprintf("# Company analysis: %s", subject))

	for _, topic := range types.CompileTopics {
		content := buckets[topic]
		if len(content) == 0 {
			if !mandatoryTopics[topic] {
				continue
			}
			sections = append(sections, fmt.Sprintf("## %s\n%s", sectionTitle[topic], fallbackSentence(subject, topic)))
			continue
		}
		sections = append(sections, fmt.Sprintf("## %s\n%s", sectionTitle[topic], strings.Join(content, "\n")))
	}

	sections = append(sections, renderSources(ranked))

	populated := 0
	for _, topic := range types.CompileTopics {
		if len(buckets[topic]) > 0 {
			populated++
		}
	}
	plog.Append("compile", map[string]any{
		"subject":            subject,
		"sections_populated": populated,
		"sources":            len(ranked),
		"images":             len(images),
		"official_sources":   countOfficial(ranked),
	})

	return types.CompiledResult{
		Content: strings.Join(sections, "\n\n"),
		Images:  images,
	}
}

// isDuplicate reports whether text is a near-duplicate of anything already
// accepted into the bucket. O(n²) per bucket; buckets stay small.
func isDuplicate(text string, accepted []string) bool {
	for _, existing := range accepted {
		if Similarity(text, existing) > duplicateThreshold {
			return true
		}
	}
	return false
}

// renderSources lists the top ranked sources with official-site markers.
func renderSources(ranked []types.AnalyzedSource) string {
	lines := []string{"## Sources"}
	for i, src := range ranked {
		if i >= maxSources {
			break
		}
		marker := ""
		if src.IsOfficial {
			marker = "[official] "
		}
		lines = append(lines, fmt.Sprintf("%d. %s[%s](%s)", i+1, marker, src.Title, src.URL))
	}
	return strings.Join(lines, "\n")
}

func countOfficial(sources []types.AnalyzedSource) int {
	n := 0
	for _, s := range sources {
		if s.IsOfficial {
			n++
		}
	}
	return n
}

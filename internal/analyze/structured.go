// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/pkg/types"
)

// minScore is the gate below which a source is discarded: records with
// relevance or reliability under this value never reach compilation.
const minScore = 3

// structuredPrompt instructs the backend to return one JSON object with
// 0-10 scores and the six topic buckets.
const structuredPrompt = `Analyze the web page content above and extract important information about the company.

Focus on:
1. Representative director and management team
2. Company profile (founding year, capital, employee count)
3. Corporate philosophy, mission, and vision
4. Main business lines and services
5. Financial performance

Also rate the source. Official sites, government bodies, and reputable
business media are reliable; user-editable sites, personal blogs, and social
media posts are not.

Return only a JSON object in this exact shape:

{
  "relevance": 0-10,
  "reliability": 0-10,
  "extracted_info": {
    "management": "information about the representative and management team",
    "company_profile": "company profile information",
    "philosophy": "corporate philosophy information",
    "business": "business line information",
    "performance": "financial performance information",
    "other": "other important information"
  },
  "source_evaluation": "short comment on the information source"
}

Leave a field empty when the page says nothing about it. Extract only facts
the page states explicitly.`

// structuredResponse is the wire shape of the backend's JSON answer.
// Scores arrive as numbers; float64 tolerates fractional grades.
type structuredResponse struct {
	Relevance        float64           `json:"relevance"`
	Reliability      float64           `json:"reliability"`
	ExtractedInfo    map[string]string `json:"extracted_info"`
	SourceEvaluation string            `json:"source_evaluation"`
}

// AnalyzeContent is the structured fact-extraction variant: it scores one
// fetched page 0-10 for relevance and reliability and buckets its facts by
// topic. A parse failure or a score under the gate discards the record —
// the page contributes nothing, which is not an error to the caller.
func (a *Analyzer) AnalyzeContent(ctx context.Context, subject string, page types.FetchedContent, plog *types.ProcessLog) *types.AnalyzedSource {
	if strings.TrimSpace(page.Content) == "" {
		return nil
	}

	official := "no"
	if page.IsOfficial {
		official = "yes"
	}
	user := fmt.Sprintf(`Company: %s
Page title: %s
Official site: %s
URL: %s
Content:
%s

%s`, subject, page.Title, official, page.URL, truncate(page.Content), structuredPrompt)

	resp, err := a.LLM.CompleteJSON(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Str("url", page.URL).Msg("content analysis failed")
		plog.AppendError("content_analysis_error", err, map[string]any{"url": page.URL})
		return nil
	}

	var parsed structuredResponse
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		log.Warn().Err(err).Str("url", page.URL).Msg("content analysis returned malformed JSON")
		plog.AppendError("content_analysis_error", err, map[string]any{
			"url":      page.URL,
			"response": types.Preview(resp, 200),
		})
		return nil
	}

	info := make(map[types.TopicCategory]string, len(parsed.ExtractedInfo))
	var fields []string
	for key, value := range parsed.ExtractedInfo {
		if strings.TrimSpace(value) == "" {
			continue
		}
		category := types.TopicCategory(key)
		if !validTopic(category) {
			continue
		}
		info[category] = value
		fields = append(fields, key)
	}

	relevance := int(parsed.Relevance)
	reliability := int(parsed.Reliability)

	plog.Append("content_analysis", map[string]any{
		"url":         page.URL,
		"title":       page.Title,
		"relevance":   relevance,
		"reliability": reliability,
		"fields":      fields,
	})

	if relevance < minScore || reliability < minScore {
		return nil
	}

	return &types.AnalyzedSource{
		URL:              page.URL,
		Title:            page.Title,
		Relevance:        relevance,
		Reliability:      reliability,
		ExtractedInfo:    info,
		SourceEvaluation: parsed.SourceEvaluation,
		IsOfficial:       page.IsOfficial,
		Images:           page.Images,
	}
}

func validTopic(c types.TopicCategory) bool {
	for _, t := range types.CompileTopics {
		if c == t {
			return true
		}
	}
	return false
}

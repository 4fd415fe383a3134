// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the company research
// pipeline: search results, fetched page content, analyzed sources, the
// compiled narrative, and the per-invocation process log.
package types

import "time"

// SearchResultEntry is a single candidate result returned by the web
// search backend. Domain is derived from URL; entries whose domain matches
// the excluded-domain list are never produced.
type SearchResultEntry struct {
	URL            string `json:"url" yaml:"url"`
	Title          string `json:"title" yaml:"title"`
	ContentPreview string `json:"content_preview" yaml:"content_preview"`
	Domain         string `json:"domain" yaml:"domain"`
}

// FetchedContent is the full extracted content of one web page or PDF.
type FetchedContent struct {
	URL        string   `json:"url" yaml:"url"`
	Title      string   `json:"title" yaml:"title"`
	Content    string   `json:"content" yaml:"content"`
	RawContent string   `json:"raw_content,omitempty" yaml:"raw_content,omitempty"`
	Images     []string `json:"images,omitempty" yaml:"images,omitempty"`

	// IsOfficial reports whether the URL looks like the subject's own web
	// presence. Heuristic: the registrable domain contains a normalized
	// token of the subject name and uses a recognized TLD. Approximate by
	// design of the heuristic's inputs; not a guarantee.
	IsOfficial bool `json:"is_official" yaml:"is_official"`
}

// TopicCategory is one of the six fixed buckets the compiler aggregates
// extracted information into.
type TopicCategory string

const (
	TopicManagement     TopicCategory = "management"
	TopicCompanyProfile TopicCategory = "company_profile"
	TopicPhilosophy     TopicCategory = "philosophy"
	TopicBusiness       TopicCategory = "business"
	TopicPerformance    TopicCategory = "performance"
	TopicOther          TopicCategory = "other"
)

// CompileTopics lists the compiler buckets in render order.
var CompileTopics = []TopicCategory{
	TopicManagement,
	TopicCompanyProfile,
	TopicPhilosophy,
	TopicBusiness,
	TopicPerformance,
	TopicOther,
}

// AnalyzedSource is the structured record the fact extractor produces for
// one fetched page in detailed mode. Records with Relevance < 3 or
// Reliability < 3 are discarded before compilation.
type AnalyzedSource struct {
	URL              string                   `json:"url" yaml:"url"`
	Title            string                   `json:"title" yaml:"title"`
	Relevance        int                      `json:"relevance" yaml:"relevance"`
	Reliability      int                      `json:"reliability" yaml:"reliability"`
	ExtractedInfo    map[TopicCategory]string `json:"extracted_info" yaml:"extracted_info"`
	SourceEvaluation string                   `json:"source_evaluation,omitempty" yaml:"source_evaluation,omitempty"`
	IsOfficial       bool                     `json:"is_official" yaml:"is_official"`
	Images           []string                 `json:"images,omitempty" yaml:"images,omitempty"`
}

// Score is the relevance+reliability sum used as the secondary ranking key.
func (s AnalyzedSource) Score() int {
	return s.Relevance + s.Reliability
}

// CompiledResult is the terminal artifact of compilation: a markdown
// narrative plus up to five image URLs in first-seen order.
type CompiledResult struct {
	Content string   `json:"content" yaml:"content"`
	Images  []string `json:"images" yaml:"images"`
}

// ImageDescription pairs an image URL with a short generated description.
type ImageDescription struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

// ResearchRun is a completed research invocation as persisted in the
// history store.
type ResearchRun struct {
	ID        string           `json:"id" yaml:"id"`
	Subject   string           `json:"subject" yaml:"subject"`
	Mode      string           `json:"mode" yaml:"mode"`
	Content   string           `json:"content" yaml:"content"`
	Images    []string         `json:"images,omitempty" yaml:"images,omitempty"`
	Sources   []AnalyzedSource `json:"sources,omitempty" yaml:"sources,omitempty"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

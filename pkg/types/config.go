// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "company-researcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchDepth selects how thorough a backend search is. Advanced requests
// more, slower results.
type SearchDepth string

const (
	DepthBasic    SearchDepth = "basic"
	DepthAdvanced SearchDepth = "advanced"
)

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of results per query (default 8).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Depth is the search depth hint (default advanced).
	Depth SearchDepth `json:"depth" yaml:"depth"`

	// ExcludeDomains extends the built-in excluded-domain list.
	ExcludeDomains []string `json:"exclude_domains,omitempty" yaml:"exclude_domains,omitempty"`
}

// FetchConfig holds settings for the content fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PDFTimeout bounds a single PDF download (default 10s).
	PDFTimeout time.Duration `json:"pdf_timeout" yaml:"pdf_timeout"`
}

// AIConfig holds shared settings for stages that call the generative backend.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// VisionModel is the model used for image description (default "gpt-4o").
	VisionModel string `json:"vision_model,omitempty" yaml:"vision_model,omitempty"`

	// APIKey is the authentication key for the generative API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ResearchMode selects the fact-extraction variant. The two variants are
// alternative implementations of the same capability and are never merged:
// bucket compilation applies only to detailed mode.
type ResearchMode string

const (
	// ModeBasic runs the iterative loop and accumulates free-text fact blocks.
	ModeBasic ResearchMode = "basic"

	// ModeDetailed runs a single fan-out with structured per-source scoring
	// and bucket compilation.
	ModeDetailed ResearchMode = "detailed"
)

// ResearchConfig holds settings for the research orchestrator. The caps are
// the sole resource-bounding mechanism per invocation and must be preserved.
type ResearchConfig struct {
	// Mode selects basic (iterative free-text) or detailed (structured) research.
	Mode ResearchMode `json:"mode" yaml:"mode"`

	// MaxRounds caps the search→extract→decide loop (default 3).
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`

	// MaxLinks caps the unique links selected for extraction per round (default 10).
	MaxLinks int `json:"max_links" yaml:"max_links"`

	// MaxExtractURLs caps one extraction batch (default 5).
	MaxExtractURLs int `json:"max_extract_urls" yaml:"max_extract_urls"`

	// MaxImages caps annotated images (default 3).
	MaxImages int `json:"max_images" yaml:"max_images"`
}

// StoreConfig holds settings for the research history store.
type StoreConfig struct {
	// DataDir is the base directory for the history database (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of history query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportConfig holds settings for report generation.
type ReportConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory for generated reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Research ResearchConfig `json:"research" yaml:"research"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Report   ReportConfig   `json:"report" yaml:"report"`
}

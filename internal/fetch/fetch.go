// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves full text for a URL. PDFs are downloaded and
// parsed locally; web pages are fetched through a URL-scoped backend search
// and enriched with a structured officer/management scraping pass. Failures
// yield an empty string, never an error: one bad source must not stop a
// research round.
package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/websearch"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// Fetcher retrieves page text using an HTTP client for raw downloads and
// the search backend for page content.
type Fetcher struct {
	Search *websearch.Client
	Config types.FetchConfig
}

// New builds a Fetcher over the shared search client.
func New(search *websearch.Client, cfg types.FetchConfig) *Fetcher {
	return &Fetcher{Search: search, Config: cfg}
}

// Fetch returns the extracted plain text for rawURL, or "" when nothing
// usable could be retrieved.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	if IsPDFURL(rawURL) {
		text, err := f.fetchPDF(ctx, rawURL)
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("pdf fetch failed")
			return ""
		}
		return text
	}

	page, err := f.Search.SearchPage(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("page fetch failed")
		return ""
	}

	text := page.Content
	if page.RawContent != "" {
		if structured := StructuredBlocks(page.RawContent); structured != "" {
			text += "\n\n" + structuredHeading + "\n" + structured
		}
	}
	return text
}

// structuredHeading marks the scraped officer/management subsection so it
// is identifiable in downstream prompts.
const structuredHeading = "## Structured management data (scraped)"

// IsPDFURL reports whether the URL path ends in a PDF-indicating suffix.
func IsPDFURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// pdfTimeout returns the bounded download timeout for one PDF.
func (f *Fetcher) pdfTimeout() time.Duration {
	if f.Config.PDFTimeout > 0 {
		return f.Config.PDFTimeout
	}
	return 10 * time.Second
}

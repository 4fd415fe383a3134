// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries the Tavily web search API for candidate pages
// and extracts full page content. Results from low-signal domains
// (encyclopedias, social networks, forums) are filtered out before they
// reach the caller.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/httputil"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// searchAPIBase and extractAPIBase are the Tavily endpoints. Declared as
// vars so tests can substitute an httptest server.
var (
	searchAPIBase  = "https://api.tavily.com/search"
	extractAPIBase = "https://api.tavily.com/extract"
)

const previewChars = 200

// Client calls the search backend. It holds no per-request state and is
// reused across invocations; obtain it through a Handle.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	UserAgent  string
}

// SearchOptions narrows one search call.
type SearchOptions struct {
	Depth          types.SearchDepth
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
}

// searchRequest is the request body for the search endpoint.
type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	IncludeRaw     bool     `json:"include_raw_content,omitempty"`
}

// searchResponse is the response body from the search endpoint.
type searchResponse struct {
	Results []searchResultItem `json:"results"`
}

type searchResultItem struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
}

// Search queries the backend and returns entries with excluded domains
// filtered out. The backend is asked to exclude them too; the local filter
// is defense in depth.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResultEntry, error) {
	items, err := c.searchRaw(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	excluded := append([]string{}, ExcludedDomains...)
	excluded = append(excluded, opts.ExcludeDomains...)

	var entries []types.SearchResultEntry
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		domain := DomainOf(item.URL)
		if matchesExcluded(domain, excluded) {
			continue
		}
		entries = append(entries, types.SearchResultEntry{
			URL:            item.URL,
			Title:          item.Title,
			ContentPreview: types.Preview(item.Content, previewChars),
			Domain:         domain,
		})
	}
	return entries, nil
}

// SearchPage runs a search scoped to a single URL and returns its content.
// This is how non-PDF pages are fetched: a single-result, domain-restricted
// query through the same backend used for discovery.
func (c *Client) SearchPage(ctx context.Context, pageURL string) (types.FetchedContent, error) {
	opts := SearchOptions{
		Depth:          types.DepthAdvanced,
		MaxResults:     1,
		IncludeDomains: []string{DomainOf(pageURL)},
	}
	items, err := c.searchRaw(ctx, pageURL, opts)
	if err != nil {
		return types.FetchedContent{}, err
	}
	if len(items) == 0 {
		return types.FetchedContent{}, fmt.Errorf("no content for %s", pageURL)
	}

	first := items[0]
	return types.FetchedContent{
		URL:        pageURL,
		Title:      first.Title,
		Content:    first.Content,
		RawContent: first.RawContent,
	}, nil
}

func (c *Client) searchRaw(ctx context.Context, query string, opts SearchOptions) ([]searchResultItem, error) {
	depth := opts.Depth
	if depth == "" {
		depth = types.DepthBasic
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 8
	}

	excluded := append([]string{}, ExcludedDomains...)
	excluded = append(excluded, opts.ExcludeDomains...)

	body := searchRequest{
		APIKey:         c.APIKey,
		Query:          query,
		SearchDepth:    string(depth),
		MaxResults:     maxResults,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: excluded,
		IncludeRaw:     true,
	}

	var resp searchResponse
	if err := c.post(ctx, searchAPIBase, body, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return resp.Results, nil
}

// extractRequest is the request body for the extract endpoint.
type extractRequest struct {
	APIKey        string   `json:"api_key"`
	URLs          []string `json:"urls"`
	ExtractDepth  string   `json:"extract_depth,omitempty"`
	IncludeImages bool     `json:"include_images,omitempty"`
}

// extractResponse is the response body from the extract endpoint.
type extractResponse struct {
	Results []extractResultItem `json:"results"`
}

type extractResultItem struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Raw     string   `json:"raw_content"`
	Images  []string `json:"images"`
}

// Extract retrieves full content (and optionally images) for a batch of URLs.
func (c *Client) Extract(ctx context.Context, urls []string, includeImages bool) ([]types.FetchedContent, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	body := extractRequest{
		APIKey:        c.APIKey,
		URLs:          urls,
		ExtractDepth:  string(types.DepthAdvanced),
		IncludeImages: includeImages,
	}

	var resp extractResponse
	if err := c.post(ctx, extractAPIBase, body, &resp); err != nil {
		return nil, fmt.Errorf("extract %d urls: %w", len(urls), err)
	}

	var contents []types.FetchedContent
	for _, r := range resp.Results {
		content := r.Content
		if content == "" {
			content = r.Raw
		}
		contents = append(contents, types.FetchedContent{
			URL:        r.URL,
			Title:      r.Title,
			Content:    content,
			RawContent: r.Raw,
			Images:     r.Images,
		})
	}
	return contents, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("calling search backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search backend returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing backend response: %w", err)
	}
	return nil
}

// WebSearch is the containment wrapper the orchestrator uses: backend
// failures are logged and recorded, never raised. It always returns a
// (possibly empty) slice.
func (c *Client) WebSearch(ctx context.Context, query string, opts SearchOptions, plog *types.ProcessLog) []types.SearchResultEntry {
	entries, err := c.Search(ctx, query, opts)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("web search failed")
		plog.AppendError("web_search_error", err, map[string]any{"query": query})
		return nil
	}

	plog.Append("web_search", map[string]any{
		"query":   query,
		"results": len(entries),
	})
	return entries
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/company-researcher/pkg/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	oldSearch, oldExtract := searchAPIBase, extractAPIBase
	searchAPIBase = server.URL + "/search"
	extractAPIBase = server.URL + "/extract"
	t.Cleanup(func() {
		searchAPIBase = oldSearch
		extractAPIBase = oldExtract
	})

	return &Client{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		APIKey:     "test-key",
	}
}

func searchHandler(t *testing.T, items []searchResultItem) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("api_key = %q, want test-key", req.APIKey)
		}
		json.NewEncoder(w).Encode(searchResponse{Results: items})
	}
}

func TestSearchFiltersExcludedDomains(t *testing.T) {
	client := testClient(t, searchHandler(t, []searchResultItem{
		{URL: "https://en.wikipedia.org/wiki/Acme", Title: "Acme - Wikipedia", Content: "encyclopedia"},
		{URL: "https://acme.co.jp/about", Title: "About Acme", Content: "official page"},
		{URL: "https://old.reddit.com/r/acme", Title: "r/acme", Content: "forum"},
		{URL: "", Title: "no url", Content: "dropped"},
	}))

	entries, err := client.Search(context.Background(), "Acme Inc", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	if entries[0].URL != "https://acme.co.jp/about" {
		t.Errorf("surviving entry = %q, want the corporate page", entries[0].URL)
	}
	if entries[0].Domain != "acme.co.jp" {
		t.Errorf("domain = %q, want acme.co.jp", entries[0].Domain)
	}
}

func TestSearchCallerExclusions(t *testing.T) {
	client := testClient(t, searchHandler(t, []searchResultItem{
		{URL: "https://blocked.example.com/x", Title: "Blocked"},
		{URL: "https://ok.example.org/y", Title: "OK"},
	}))

	entries, err := client.Search(context.Background(), "Acme", SearchOptions{
		ExcludeDomains: []string{"blocked.example.com"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "OK" {
		t.Errorf("caller exclusion not applied: %+v", entries)
	}
}

func TestSearchPreviewTruncation(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	client := testClient(t, searchHandler(t, []searchResultItem{
		{URL: "https://acme.example.com/long", Title: "Long", Content: string(long)},
	}))

	entries, err := client.Search(context.Background(), "Acme", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := len(entries[0].ContentPreview); got != previewChars+3 {
		t.Errorf("preview length = %d, want %d plus ellipsis", got, previewChars)
	}
}

func TestSearchPage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxResults != 1 {
			t.Errorf("max_results = %d, want 1", req.MaxResults)
		}
		if len(req.IncludeDomains) != 1 || req.IncludeDomains[0] != "acme.example.com" {
			t.Errorf("include_domains = %v, want the page's domain", req.IncludeDomains)
		}
		json.NewEncoder(w).Encode(searchResponse{Results: []searchResultItem{
			{URL: "https://acme.example.com/page", Title: "Page", Content: "page text"},
		}})
	})

	content, err := client.SearchPage(context.Background(), "https://acme.example.com/page")
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if content.Content != "page text" {
		t.Errorf("content = %q, want page text", content.Content)
	}
}

func TestSearchPageNoResults(t *testing.T) {
	client := testClient(t, searchHandler(t, nil))

	_, err := client.SearchPage(context.Background(), "https://acme.example.com/gone")
	if err == nil {
		t.Fatal("expected error for empty result set")
	}
}

func TestExtract(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"results": []map[string]any{
				{"url": "https://acme.example.com/a", "title": "A", "raw_content": "raw text", "images": []string{"https://acme.example.com/logo.png"}},
			},
		})
		w.Write(body)
	})

	pages, err := client.Extract(context.Background(), []string{"https://acme.example.com/a"}, true)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	// Content falls back to raw when the backend sends no cleaned text.
	if pages[0].Content != "raw text" {
		t.Errorf("content = %q, want raw fallback", pages[0].Content)
	}
	if len(pages[0].Images) != 1 {
		t.Errorf("images = %v, want one", pages[0].Images)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty URL list")
	})

	pages, err := client.Extract(context.Background(), nil, false)
	if err != nil || pages != nil {
		t.Errorf("Extract(nil) = %v, %v; want nil, nil", pages, err)
	}
}

func TestWebSearchContainsFailures(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	plog := &types.ProcessLog{}
	entries := client.WebSearch(context.Background(), "Acme", SearchOptions{}, plog)

	if entries != nil {
		t.Errorf("WebSearch = %v, want nil on backend failure", entries)
	}
	logged := plog.Entries()
	if len(logged) != 1 || logged[0].Step != "web_search_error" {
		t.Fatalf("expected one web_search_error entry, got %v", logged)
	}
	if logged[0].Fields["error"] == nil {
		t.Errorf("error field missing from %v", logged[0].Fields)
	}
}

func TestWebSearchLogsSuccess(t *testing.T) {
	client := testClient(t, searchHandler(t, []searchResultItem{
		{URL: "https://acme.example.com/a", Title: "A"},
	}))

	plog := &types.ProcessLog{}
	entries := client.WebSearch(context.Background(), "Acme", SearchOptions{}, plog)

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	logged := plog.Entries()
	if len(logged) != 1 || logged[0].Step != "web_search" {
		t.Fatalf("expected one web_search entry, got %v", logged)
	}
	if logged[0].Fields["results"] != 1 {
		t.Errorf("results field = %v, want 1", logged[0].Fields["results"])
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/pdiddy/company-researcher/pkg/types"
)

func page(content string) types.FetchedContent {
	return types.FetchedContent{
		URL:     "https://acme.example.com/about",
		Title:   "About Acme",
		Content: content,
	}
}

func TestAnalyzeContentAccepts(t *testing.T) {
	m := &mockClient{jsonResponse: `{
		"relevance": 8,
		"reliability": 7,
		"extracted_info": {
			"management": "Jane Doe is the representative director.",
			"business": "Acme manufactures widgets.",
			"philosophy": ""
		},
		"source_evaluation": "Corporate site, primary source."
	}`}
	a := New(m)
	plog := &types.ProcessLog{}

	src := a.AnalyzeContent(context.Background(), "Acme", page("about text"), plog)

	if src == nil {
		t.Fatal("expected an accepted source")
	}
	if src.Relevance != 8 || src.Reliability != 7 {
		t.Errorf("scores = %d/%d, want 8/7", src.Relevance, src.Reliability)
	}
	if len(src.ExtractedInfo) != 2 {
		t.Errorf("extracted_info has %d topics, want 2 (empty values dropped): %v", len(src.ExtractedInfo), src.ExtractedInfo)
	}
	if src.ExtractedInfo[types.TopicManagement] == "" {
		t.Errorf("management bucket missing")
	}

	entries := plog.Entries()
	if len(entries) != 1 || entries[0].Step != "content_analysis" {
		t.Fatalf("expected one content_analysis entry, got %v", entries)
	}
}

func TestAnalyzeContentScoreGate(t *testing.T) {
	tests := []struct {
		name        string
		relevance   int
		reliability int
		wantKept    bool
	}{
		{"both at gate", 3, 3, true},
		{"relevance below", 2, 10, false},
		{"reliability below", 10, 2, false},
		{"both below", 1, 1, false},
		{"both high", 9, 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockClient{jsonResponse: `{
				"relevance": ` + strconv.Itoa(tt.relevance) + `,
				"reliability": ` + strconv.Itoa(tt.reliability) + `,
				"extracted_info": {"business": "something"}
			}`}
			a := New(m)

			src := a.AnalyzeContent(context.Background(), "Acme", page("text"), &types.ProcessLog{})

			if (src != nil) != tt.wantKept {
				t.Errorf("kept = %v, want %v", src != nil, tt.wantKept)
			}
		})
	}
}

func TestAnalyzeContentMalformedJSON(t *testing.T) {
	a := New(&mockClient{jsonResponse: "this is not json"})
	plog := &types.ProcessLog{}

	src := a.AnalyzeContent(context.Background(), "Acme", page("text"), plog)

	if src != nil {
		t.Fatal("malformed response must discard the record")
	}
	entries := plog.Entries()
	if len(entries) != 1 || entries[0].Step != "content_analysis_error" {
		t.Fatalf("expected content_analysis_error entry, got %v", entries)
	}
}

func TestAnalyzeContentBackendError(t *testing.T) {
	a := New(&mockClient{err: errors.New("backend down")})
	plog := &types.ProcessLog{}

	if src := a.AnalyzeContent(context.Background(), "Acme", page("text"), plog); src != nil {
		t.Fatal("backend error must discard the record")
	}
	if plog.Len() != 1 {
		t.Errorf("expected one error entry, got %d", plog.Len())
	}
}

func TestAnalyzeContentUnknownTopicsDropped(t *testing.T) {
	m := &mockClient{jsonResponse: `{
		"relevance": 6,
		"reliability": 6,
		"extracted_info": {
			"business": "real bucket",
			"made_up_topic": "should vanish"
		}
	}`}
	a := New(m)

	src := a.AnalyzeContent(context.Background(), "Acme", page("text"), &types.ProcessLog{})

	if src == nil {
		t.Fatal("expected an accepted source")
	}
	if _, ok := src.ExtractedInfo["made_up_topic"]; ok {
		t.Errorf("unknown topic survived: %v", src.ExtractedInfo)
	}
	if len(src.ExtractedInfo) != 1 {
		t.Errorf("extracted_info = %v, want only the business bucket", src.ExtractedInfo)
	}
}

func TestAnalyzeContentBlankPage(t *testing.T) {
	m := &mockClient{jsonResponse: `{"relevance": 9, "reliability": 9, "extracted_info": {}}`}
	a := New(m)

	if src := a.AnalyzeContent(context.Background(), "Acme", page("  "), &types.ProcessLog{}); src != nil {
		t.Fatal("blank page must be discarded without a backend call")
	}
}

func TestAnalyzeContentCarriesPageFlags(t *testing.T) {
	m := &mockClient{jsonResponse: `{"relevance": 5, "reliability": 5, "extracted_info": {"other": "x"}}`}
	a := New(m)
	p := page("text")
	p.IsOfficial = true
	p.Images = []string{"https://acme.example.com/logo.png"}

	src := a.AnalyzeContent(context.Background(), "Acme", p, &types.ProcessLog{})

	if src == nil {
		t.Fatal("expected an accepted source")
	}
	if !src.IsOfficial {
		t.Error("official flag lost")
	}
	if len(src.Images) != 1 {
		t.Errorf("images = %v, want carried through", src.Images)
	}
}

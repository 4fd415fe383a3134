// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/internal/store"
	"github.com/pdiddy/company-researcher/pkg/types"
)

func testService(t *testing.T, b *fakeBackend, m llm.Client, st *store.Store) *Service {
	t.Helper()
	cfg := types.PipelineConfig{
		Search: types.SearchConfig{APIKey: "test-key"},
		Report: types.ReportConfig{OutputDir: t.TempDir()},
	}
	svc := NewService(cfg, m, st)
	svc.SearchHandle.Client().HTTPClient = &http.Client{Transport: b}
	return svc
}

func TestServiceNotConfigured(t *testing.T) {
	svc := NewService(types.PipelineConfig{}, nil, nil)
	ctx := context.Background()

	for name, res := range map[string]Result{
		"info":     svc.GetCompanyInfo(ctx, "Acme Corp"),
		"research": svc.Research(ctx, "Acme Corp", nil),
		"images":   svc.GetImages(ctx, "Acme Corp"),
	} {
		if res.Success {
			t.Errorf("%s: succeeded without an API key", name)
		}
		if !strings.Contains(res.Message, "search backend not configured") {
			t.Errorf("%s: message = %q", name, res.Message)
		}
	}
}

func TestServiceNoModelBackend(t *testing.T) {
	svc := testService(t, twoPageBackend(), nil, nil)
	ctx := context.Background()

	for name, res := range map[string]Result{
		"research": svc.Research(ctx, "Acme Corp", nil),
		"images":   svc.GetImages(ctx, "Acme Corp"),
		"report":   svc.GenerateReport(ctx, "Acme Corp", "some info", nil),
	} {
		if res.Success {
			t.Errorf("%s: succeeded without a model backend", name)
		}
		if !strings.Contains(res.Message, llm.ErrNotConfigured.Error()) {
			t.Errorf("%s: message = %q", name, res.Message)
		}
	}
}

func TestGetCompanyInfo(t *testing.T) {
	backend := twoPageBackend()
	svc := testService(t, backend, nil, nil)

	res := svc.GetCompanyInfo(context.Background(), "Acme Corp")
	if !res.Success {
		t.Fatalf("GetCompanyInfo failed: %s", res.Message)
	}

	if backend.queries[0] != "Acme Corp company information corporate profile" {
		t.Errorf("query = %q, want the profile-suffixed form", backend.queries[0])
	}
	for _, want := range []string{"1. Acme in the news", "2. Company Profile", "https://acme.co.jp/company"} {
		if !strings.Contains(res.Data, want) {
			t.Errorf("data missing %q:\n%s", want, res.Data)
		}
	}
}

func TestGetCompanyInfoURLPassthrough(t *testing.T) {
	backend := twoPageBackend()
	svc := testService(t, backend, nil, nil)

	svc.GetCompanyInfo(context.Background(), "https://acme.co.jp")

	if backend.queries[0] != "https://acme.co.jp" {
		t.Errorf("query = %q, want the URL unchanged", backend.queries[0])
	}
}

func TestGetCompanyInfoNoResults(t *testing.T) {
	svc := testService(t, &fakeBackend{}, nil, nil)

	res := svc.GetCompanyInfo(context.Background(), "Acme Corp")
	if !res.Success {
		t.Fatalf("empty search should still succeed: %s", res.Message)
	}
	if res.Data != "Search returned no results for Acme Corp." {
		t.Errorf("data = %q", res.Data)
	}
}

func TestResearchSavesRun(t *testing.T) {
	st, err := store.New(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	model := &scriptedModel{
		queries:      `["Acme Corp history"]`,
		continuation: []string{`""`},
		relevance:    "yes",
		facts:        "- Founded: 1999",
	}
	svc := testService(t, twoPageBackend(), model, st)

	res := svc.Research(context.Background(), "Acme Corp", nil)
	if !res.Success {
		t.Fatalf("Research failed: %s", res.Message)
	}
	if res.RunID == "" {
		t.Fatal("RunID not set despite an attached store")
	}

	run, err := st.GetRun(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Subject != "Acme Corp" || run.Mode != string(types.ModeBasic) {
		t.Errorf("saved run = %q/%q", run.Subject, run.Mode)
	}
	if run.Content != res.Data {
		t.Error("saved content differs from the returned data")
	}
}

func TestResearchDetailedSavesSources(t *testing.T) {
	st, err := store.New(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	backend := twoPageBackend()
	backend.pages["https://acme.co.jp/company"] = backendResult{
		URL:     "https://acme.co.jp/company",
		Title:   "Company Profile",
		Content: "Acme Corp was founded in 1999.",
		Images:  []string{"https://acme.co.jp/logo.png"},
	}
	model := &scriptedModel{
		structured:  `{"relevance": 8, "reliability": 9, "extracted_info": {"management": "Jane Doe is the representative director."}, "source_evaluation": "Official corporate site."}`,
		description: "The Acme corporate logo.",
	}

	cfg := types.PipelineConfig{
		Search:   types.SearchConfig{APIKey: "test-key"},
		Research: types.ResearchConfig{Mode: types.ModeDetailed},
	}
	svc := NewService(cfg, model, st)
	svc.SearchHandle.Client().HTTPClient = &http.Client{Transport: backend}

	res := svc.Research(context.Background(), "Acme Corp", nil)
	if !res.Success {
		t.Fatalf("Research failed: %s", res.Message)
	}

	run, err := st.GetRun(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Mode != string(types.ModeDetailed) {
		t.Errorf("mode = %q", run.Mode)
	}
	if len(run.Sources) != 2 {
		t.Fatalf("saved sources = %d, want both analyzed pages", len(run.Sources))
	}

	var official *types.AnalyzedSource
	for i := range run.Sources {
		if run.Sources[i].URL == "https://acme.co.jp/company" {
			official = &run.Sources[i]
		}
	}
	if official == nil {
		t.Fatal("official page missing from saved sources")
	}
	if !official.IsOfficial || official.Relevance != 8 || official.Reliability != 9 {
		t.Errorf("official source = %+v", official)
	}
	if official.ExtractedInfo[types.TopicManagement] != "Jane Doe is the representative director." {
		t.Errorf("extracted info = %v", official.ExtractedInfo)
	}
}

func TestResearchWithoutStore(t *testing.T) {
	model := &scriptedModel{
		queries:      `["Acme Corp history"]`,
		continuation: []string{`""`},
		relevance:    "yes",
		facts:        "- Founded: 1999",
	}
	svc := testService(t, twoPageBackend(), model, nil)

	res := svc.Research(context.Background(), "Acme Corp", nil)
	if !res.Success {
		t.Fatalf("Research failed: %s", res.Message)
	}
	if res.RunID != "" {
		t.Errorf("RunID = %q, want empty without a store", res.RunID)
	}
}

func TestGetImages(t *testing.T) {
	backend := twoPageBackend()
	backend.pages["https://acme.co.jp/company"] = backendResult{
		URL:     "https://acme.co.jp/company",
		Title:   "Company Profile",
		Content: "Acme Corp corporate site.",
		Images:  []string{"https://acme.co.jp/logo.png"},
	}
	model := &scriptedModel{description: "The Acme corporate logo."}
	svc := testService(t, backend, model, nil)

	res := svc.GetImages(context.Background(), "Acme Corp")
	if !res.Success {
		t.Fatalf("GetImages failed: %s", res.Message)
	}
	if len(res.Images) != 1 {
		t.Fatalf("images = %v, want 1", res.Images)
	}
	if res.Images[0].URL != "https://acme.co.jp/logo.png" || res.Images[0].Description != "The Acme corporate logo." {
		t.Errorf("image = %+v", res.Images[0])
	}

	// Only the official site is extracted.
	if len(backend.extracts) != 1 || len(backend.extracts[0]) != 1 || backend.extracts[0][0] != "https://acme.co.jp/company" {
		t.Errorf("extract batches = %v", backend.extracts)
	}

	// The annotation steps end up in the envelope's trail.
	if len(stepEntries(res.ProcessLog, "image_description")) != 1 {
		t.Error("missing image_description entry in the process log")
	}
}

func TestGetImagesNoneFound(t *testing.T) {
	svc := testService(t, &fakeBackend{fail: true}, &scriptedModel{}, nil)

	res := svc.GetImages(context.Background(), "Acme Corp")
	if !res.Success {
		t.Fatalf("empty image search should still succeed: %s", res.Message)
	}
	if len(res.Images) != 0 {
		t.Errorf("images = %v, want none", res.Images)
	}
	if res.Message != "No images related to Acme Corp could be found." {
		t.Errorf("message = %q", res.Message)
	}
}

func TestGenerateReport(t *testing.T) {
	model := &scriptedModel{fallback: "# Acme Corp\n## Overview\nMakes widgets."}
	svc := testService(t, &fakeBackend{}, model, nil)

	res := svc.GenerateReport(context.Background(), "Acme Corp", "Acme makes widgets.", nil)
	if !res.Success {
		t.Fatalf("GenerateReport failed: %s", res.Message)
	}
	if !strings.Contains(res.Data, "Makes widgets.") {
		t.Errorf("data = %q", res.Data)
	}

	saved, err := os.ReadFile(res.Message)
	if err != nil {
		t.Fatalf("reading report at %q: %v", res.Message, err)
	}
	if string(saved) != res.Data {
		t.Error("file content differs from the returned data")
	}
}

func TestGenerateReportBlankInfo(t *testing.T) {
	svc := testService(t, &fakeBackend{}, &scriptedModel{}, nil)

	res := svc.GenerateReport(context.Background(), "Acme Corp", "   ", nil)
	if res.Success {
		t.Fatal("blank info should fail")
	}
	if !strings.Contains(res.Message, "no research content") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestEntryPointPanicContained(t *testing.T) {
	// A nil report generator makes GenerateReport panic internally; the
	// envelope must absorb it.
	svc := testService(t, &fakeBackend{}, &scriptedModel{}, nil)
	svc.Reports = nil

	res := svc.GenerateReport(context.Background(), "Acme Corp", "some info", nil)
	if res.Success {
		t.Fatal("panicking entry point reported success")
	}
	if !strings.HasPrefix(res.Message, "internal error:") {
		t.Errorf("message = %q", res.Message)
	}
	if len(stepEntries(res.ProcessLog, "internal_error")) != 1 {
		t.Error("missing internal_error entry")
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/company-researcher/internal/analyze"
	"github.com/pdiddy/company-researcher/internal/fetch"
	"github.com/pdiddy/company-researcher/internal/llm"
	"github.com/pdiddy/company-researcher/internal/plan"
	"github.com/pdiddy/company-researcher/internal/report"
	"github.com/pdiddy/company-researcher/internal/store"
	"github.com/pdiddy/company-researcher/internal/vision"
	"github.com/pdiddy/company-researcher/internal/websearch"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// Result is the uniform envelope every service entry point returns.
// Failures are reported through Success=false and Message; entry points do
// not panic across the boundary.
type Result struct {
	Success    bool                     `json:"success"`
	Data       string                   `json:"data,omitempty"`
	Images     []types.ImageDescription `json:"images,omitempty"`
	RunID      string                   `json:"run_id,omitempty"`
	Message    string                   `json:"message,omitempty"`
	ProcessLog *types.ProcessLog        `json:"process_log,omitempty"`
}

func failure(plog *types.ProcessLog, format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...), ProcessLog: plog}
}

// Service is the public research surface. It owns the backend handles and
// composes the pipeline stages per invocation.
type Service struct {
	SearchHandle *websearch.Handle
	LLM          llm.Client
	Store        *store.Store
	Reports      *report.Generator
	Config       types.PipelineConfig
}

// NewService wires a service from configuration. The store is optional;
// reporting and research degrade to unsaved results without it.
func NewService(cfg types.PipelineConfig, client llm.Client, st *store.Store) *Service {
	return &Service{
		SearchHandle: websearch.NewHandle(cfg.Search),
		LLM:          client,
		Store:        st,
		Reports:      report.New(client, cfg.Report),
		Config:       cfg,
	}
}

// Close releases backend connections. The store is closed by its owner.
func (s *Service) Close() {
	s.SearchHandle.Close()
}

func (s *Service) orchestrator() *Orchestrator {
	client := s.SearchHandle.Client()
	return &Orchestrator{
		Search:    client,
		Fetcher:   fetch.New(client, s.Config.Fetch),
		Analyzer:  analyze.New(s.LLM),
		Planner:   plan.New(s.LLM),
		SearchCfg: s.Config.Search,
		Config:    s.Config.Research,
	}
}

func (s *Service) annotator() *vision.Annotator {
	a := vision.New(s.LLM)
	if s.Config.Research.MaxImages > 0 {
		a.MaxImages = s.Config.Research.MaxImages
	}
	return a
}

// recoverInto converts a panic in an entry point into a failure envelope.
func recoverInto(res *Result, plog *types.ProcessLog) {
	if r := recover(); r != nil {
		log.Error().Any("panic", r).Msg("research entry point panicked")
		plog.Append("internal_error", map[string]any{"detail": fmt.Sprint(r)})
		*res = failure(plog, "internal error: %v", r)
	}
}

// GetCompanyInfo performs a quick single-query lookup and returns the
// search result previews as one text block. When the search backend yields
// nothing the envelope still succeeds with a sentinel line, matching what a
// caller rendering the result expects.
func (s *Service) GetCompanyInfo(ctx context.Context, subject string) (res Result) {
	plog := &types.ProcessLog{}
	defer recoverInto(&res, plog)

	if !s.SearchHandle.Configured() {
		return failure(plog, "search backend not configured: missing API key")
	}

	query := subject
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		query = subject + " company information corporate profile"
	}

	entries := s.SearchHandle.Client().WebSearch(ctx, query, websearch.SearchOptions{
		Depth:          s.Config.Search.Depth,
		MaxResults:     s.Config.Search.MaxResults,
		ExcludeDomains: s.Config.Search.ExcludeDomains,
	}, plog)

	if len(entries) == 0 {
		plog.Append("quick_lookup_empty", map[string]any{"subject": subject})
		return Result{
			Success:    true,
			Data:       fmt.Sprintf("Search returned no results for %s.", subject),
			ProcessLog: plog,
		}
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, e.Title, e.URL, e.ContentPreview)
	}
	return Result{Success: true, Data: strings.TrimSpace(b.String()), ProcessLog: plog}
}

// Research runs the configured research variant for subject and persists
// the run when a store is attached. Sections steer query planning; nil
// selects the default core sections.
func (s *Service) Research(ctx context.Context, subject string, sections map[string]bool) (res Result) {
	plog := &types.ProcessLog{}
	defer recoverInto(&res, plog)

	if !s.SearchHandle.Configured() {
		return failure(plog, "search backend not configured: missing API key")
	}
	if s.LLM == nil {
		return failure(plog, "model backend not configured: %v", llm.ErrNotConfigured)
	}

	o := s.orchestrator()
	mode := s.Config.Research.Mode
	if mode == "" {
		mode = types.ModeBasic
	}

	var (
		content string
		images  []string
		sources []types.AnalyzedSource
	)
	switch mode {
	case types.ModeDetailed:
		compiled, srcs := o.Detailed(ctx, subject, s.annotator(), plog)
		content = compiled.Content
		images = compiled.Images
		sources = srcs
	default:
		content = o.Run(ctx, subject, sections, plog)
	}

	runID := ""
	if s.Store != nil {
		id, err := s.Store.SaveRun(ctx, types.ResearchRun{
			Subject: subject,
			Mode:    string(mode),
			Content: content,
			Images:  images,
			Sources: sources,
		})
		if err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("saving research run failed")
			plog.AppendError("save_error", err, map[string]any{"subject": subject})
		} else {
			runID = id
		}
	}

	return Result{Success: true, Data: content, RunID: runID, ProcessLog: plog}
}

// GetImages finds images related to the subject: official pages first, a
// logo-oriented query as fallback, each capped and described by the vision
// model. An empty result is a successful envelope with a message, not an
// error.
func (s *Service) GetImages(ctx context.Context, subject string) (res Result) {
	plog := &types.ProcessLog{}
	defer recoverInto(&res, plog)

	if !s.SearchHandle.Configured() {
		return failure(plog, "search backend not configured: missing API key")
	}
	if s.LLM == nil {
		return failure(plog, "model backend not configured: %v", llm.ErrNotConfigured)
	}

	plog.Append("image_search_start", map[string]any{"subject": subject})
	client := s.SearchHandle.Client()
	opts := websearch.SearchOptions{
		Depth:          s.Config.Search.Depth,
		MaxResults:     s.Config.Search.MaxResults,
		ExcludeDomains: s.Config.Search.ExcludeDomains,
	}

	entries := client.WebSearch(ctx, subject+" official site corporate profile", opts, plog)

	var urls []string
	for _, e := range entries {
		if websearch.IsOfficialSite(e.URL, subject) {
			urls = append(urls, e.URL)
		}
	}
	if len(urls) == 0 {
		for i, e := range entries {
			if i == 3 {
				break
			}
			urls = append(urls, e.URL)
		}
	}

	descs := s.describeImagesFrom(ctx, subject, urls, plog)
	if len(descs) == 0 {
		logoEntries := client.WebSearch(ctx, subject+" logo official", opts, plog)
		var logoURLs []string
		for i, e := range logoEntries {
			if i == 2 {
				break
			}
			logoURLs = append(logoURLs, e.URL)
		}
		descs = s.describeImagesFrom(ctx, subject, logoURLs, plog)
	}

	if len(descs) == 0 {
		return Result{
			Success:    true,
			Message:    fmt.Sprintf("No images related to %s could be found.", subject),
			ProcessLog: plog,
		}
	}
	return Result{Success: true, Images: descs, ProcessLog: plog}
}

// describeImagesFrom extracts page content with images for the given URLs
// and runs the annotator over the images found, first-seen order. The
// annotation steps are recorded in their own log and hoisted into the
// caller's trail afterwards.
func (s *Service) describeImagesFrom(ctx context.Context, subject string, urls []string, plog *types.ProcessLog) []types.ImageDescription {
	if len(urls) == 0 {
		return nil
	}

	pages, err := s.SearchHandle.Client().Extract(ctx, urls, true)
	if err != nil {
		log.Warn().Err(err).Int("urls", len(urls)).Msg("image extraction failed")
		plog.AppendError("extract_error", err, map[string]any{"urls": len(urls)})
		return nil
	}

	seen := make(map[string]bool)
	var imageURLs []string
	for _, page := range pages {
		for _, img := range page.Images {
			if img == "" || seen[img] {
				continue
			}
			seen[img] = true
			imageURLs = append(imageURLs, img)
		}
	}

	nested := &types.ProcessLog{}
	descs := s.annotator().Annotate(ctx, subject, imageURLs, nested)
	plog.Extend(nested.Entries())
	return descs
}

// GenerateReport builds a sectioned analysis report from previously
// researched info and writes it to the output directory.
func (s *Service) GenerateReport(ctx context.Context, subject, info string, sections map[string]bool) (res Result) {
	plog := &types.ProcessLog{}
	defer recoverInto(&res, plog)

	if s.LLM == nil {
		return failure(plog, "model backend not configured: %v", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(info) == "" {
		return failure(plog, "no research content to report on for %s", subject)
	}

	content, err := s.Reports.Generate(ctx, subject, info, sections, plog)
	if err != nil {
		return failure(plog, "report generation failed: %v", err)
	}

	path, err := s.Reports.Save(subject, content, sections)
	if err != nil {
		return failure(plog, "report save failed: %v", err)
	}

	plog.Append("report_saved", map[string]any{"path": path})
	return Result{Success: true, Data: content, Message: path, ProcessLog: plog}
}

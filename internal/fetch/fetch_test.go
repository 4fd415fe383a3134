// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/company-researcher/pkg/types"
)

func TestFetchPDFFailureYieldsEmpty(t *testing.T) {
	f := New(nil, types.FetchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: time.Second},
		PDFTimeout: time.Second,
	})

	// Unroutable local port: download fails, Fetch degrades to "".
	if got := f.Fetch(context.Background(), "http://127.0.0.1:1/report.pdf"); got != "" {
		t.Errorf("Fetch = %q, want empty on download failure", got)
	}
}

func TestPDFTimeoutDefault(t *testing.T) {
	f := New(nil, types.FetchConfig{})
	if got := f.pdfTimeout(); got != 10*time.Second {
		t.Errorf("pdfTimeout = %v, want 10s default", got)
	}

	f.Config.PDFTimeout = 3 * time.Second
	if got := f.pdfTimeout(); got != 3*time.Second {
		t.Errorf("pdfTimeout = %v, want configured 3s", got)
	}
}

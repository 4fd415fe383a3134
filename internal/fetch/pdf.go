// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/company-researcher/internal/httputil"
)

// maxPDFBytes bounds how much of a PDF is downloaded.
const maxPDFBytes = 20 << 20

// officerBlockHeading marks the redundant officer block appended after the
// page text so it survives later truncation.
const officerBlockHeading = "--- Officer information (extracted) ---"

// officerTitlePattern finds a leadership title token and captures the rest
// of its line plus following non-blank lines, i.e. one officer block up to
// the next blank line.
var officerTitlePattern = regexp.MustCompile(
	`(?i)(representative director|chief executive officer|executive officer|chairman|president|director|代表取締役|取締役|社長|会長|役員)[^\n]*(?:\n[^\n\S]*\S[^\n]*)*`)

// fetchPDF downloads the PDF with a bounded timeout, concatenates the text
// of all pages, and appends officer/title blocks found by a regex pass.
func (f *Fetcher) fetchPDF(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.pdfTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if f.Config.UserAgent != "" {
		req.Header.Set("User-Agent", f.Config.UserAgent)
	}

	resp, err := httputil.NewClient(f.Config.HTTPConfig).Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pdf download returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return "", fmt.Errorf("reading pdf body: %w", err)
	}

	text, err := extractPDFText(data)
	if err != nil {
		return "", err
	}

	if blocks := OfficerBlocks(text); len(blocks) > 0 {
		text += "\n\n" + officerBlockHeading + "\n" + strings.Join(blocks, "\n\n")
	}
	return text, nil
}

// extractPDFText parses the PDF and concatenates the plain text of every page.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("pdf contained no extractable text")
	}
	return b.String(), nil
}

// OfficerBlocks returns every officer/title block found in text: a
// leadership title token followed by content up to the next blank line.
func OfficerBlocks(text string) []string {
	matches := officerTitlePattern.FindAllString(text, -1)
	var blocks []string
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" {
			blocks = append(blocks, m)
		}
	}
	return blocks
}

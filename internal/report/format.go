// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import "regexp"

var (
	headingBefore = regexp.MustCompile(`(\n#{1,6}\s)`)
	headingAfter  = regexp.MustCompile(`(#{1,6}\s.+)(\n(?:[^#\n]))`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// FormatReport normalizes markdown spacing: a blank line before and after
// every heading, and runs of blank lines collapsed to one. Idempotent.
func FormatReport(report string) string {
	report = headingBefore.ReplaceAllString(report, "\n$1")
	report = headingAfter.ReplaceAllString(report, "$1\n$2")
	report = blankRuns.ReplaceAllString(report, "\n\n")
	return report
}

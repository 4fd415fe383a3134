// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// managementKeywords are the officer/management tokens the structured pass
// looks for in headings, table cells, and tables.
var managementKeywords = []string{
	"director",
	"president",
	"officer",
	"executive",
	"management",
	"ceo",
	"chairman",
	"代表取締役",
	"取締役",
	"役員",
	"社長",
}

func containsKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range managementKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// StructuredBlocks scans raw HTML for officer/management content: for each
// heading-like or table-cell element containing a keyword it pulls the
// nearest following table/paragraph/list text, and every table whose full
// text contains a keyword is flattened row by row with pipe-joined cells.
// Returns "" when the HTML yields nothing.
func StructuredBlocks(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var blocks []string
	seen := make(map[string]bool)

	add := func(block string) {
		block = collapseSpace(block)
		if block == "" || seen[block] {
			return
		}
		seen[block] = true
		blocks = append(blocks, block)
	}

	doc.Find("h1, h2, h3, h4, th, td, dt").Each(func(_ int, sel *goquery.Selection) {
		heading := strings.TrimSpace(sel.Text())
		if heading == "" || !containsKeyword(heading) {
			return
		}
		if body := nearestFollowing(sel); body != "" {
			add(heading + ": " + body)
		}
	})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if !containsKeyword(table.Text()) {
			return
		}
		if rows := flattenTable(table); rows != "" {
			add(rows)
		}
	})

	return strings.Join(blocks, "\n")
}

// nearestFollowing returns the text of the first table, paragraph, or list
// after sel, looking at siblings first and then at the parent's siblings
// (for cells nested inside rows).
func nearestFollowing(sel *goquery.Selection) string {
	next := sel.NextAllFiltered("table, p, ul, ol, dl").First()
	if next.Length() == 0 {
		next = sel.Parent().NextAllFiltered("table, p, ul, ol, dl").First()
	}
	if next.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(next.Text())
}

// flattenTable renders each table row as pipe-joined cell text.
func flattenTable(table *goquery.Selection) string {
	var rows []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			if text := collapseSpace(cell.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	return strings.Join(rows, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

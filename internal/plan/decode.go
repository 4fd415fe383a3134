// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeList parses a list of strings out of free text: the substring
// between the first '[' and the last ']' is decoded as a JSON array.
// Backends often quote with single quotes, so a second attempt normalizes
// quotes before giving up. The substring is never executed as code.
func DecodeList(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no bracketed list found")
	}
	raw := text[start : end+1]

	items, err := decodeJSONStrings(raw)
	if err != nil {
		// Single-quoted lists are common; normalize and retry.
		items, err = decodeJSONStrings(strings.ReplaceAll(raw, "'", `"`))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}

	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list contained no strings")
	}
	return out, nil
}

func decodeJSONStrings(raw string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"unicode/utf8"
)

// ProcessEntry is one step in the audit trail of a research invocation.
// Step is a short tag; Fields carries free-form detail.
type ProcessEntry struct {
	Step   string         `json:"step" yaml:"step"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ProcessLog is the append-only audit trail for one research invocation.
// It is surfaced to the caller for transparency and never consulted for
// control decisions. One invocation runs sequentially, so the log is not
// guarded by a lock.
type ProcessLog struct {
	entries []ProcessEntry
}

// Append records a step. A nil receiver is a no-op so components can log
// unconditionally.
func (l *ProcessLog) Append(step string, fields map[string]any) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, ProcessEntry{Step: step, Fields: fields})
}

// AppendError records a failed step with its error string.
func (l *ProcessLog) AppendError(step string, err error, fields map[string]any) {
	if l == nil {
		return
	}
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.entries = append(l.entries, ProcessEntry{Step: step, Fields: fields})
}

// Extend appends every entry of other, preserving order. Used to hoist a
// nested log (e.g. the image flow's own log) into the caller's trail.
func (l *ProcessLog) Extend(other []ProcessEntry) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, other...)
}

// Entries returns the recorded steps in append order.
func (l *ProcessLog) Entries() []ProcessEntry {
	if l == nil {
		return nil
	}
	return l.entries
}

// Len returns the number of recorded steps.
func (l *ProcessLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// MarshalJSON serializes the log as its entry array.
func (l ProcessLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.entries)
}

// MarshalYAML serializes the log as its entry list.
func (l ProcessLog) MarshalYAML() (any, error) {
	return l.entries, nil
}

// Preview shortens s for inclusion in a log field. Long page text is never
// logged whole. The cut lands on a rune boundary so multi-byte text stays
// valid UTF-8.
func Preview(s string, max int) string {
	if max <= 0 {
		max = 200
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

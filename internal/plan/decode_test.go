// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"reflect"
	"testing"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"plain json array", `["Acme revenue", "Acme CEO"]`, []string{"Acme revenue", "Acme CEO"}, false},
		{"array inside chatter", `Here are the queries: ['Acme revenue', 'Acme CEO'] Hope this helps!`, []string{"Acme revenue", "Acme CEO"}, false},
		{"single quoted", `['Acme profile']`, []string{"Acme profile"}, false},
		{"code fence", "```json\n[\"Acme history\"]\n```", []string{"Acme history"}, false},
		{"empty strings dropped", `["", "Acme capital", "  "]`, []string{"Acme capital"}, false},
		{"no brackets", "I could not produce a list.", nil, true},
		{"only empty strings", `["", ""]`, nil, true},
		{"not an array of strings", `[1, 2, 3]`, nil, true},
		{"unbalanced", "queries: [broken", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeList(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

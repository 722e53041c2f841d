package rewrite

import (
	"testing"
)

func TestExtractRewriteResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"index": 1, "text": "[door creaks]"},
				{"index": 2, "text": "[thunder]"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here are the rewritten captions:
			[
				{"index": 1, "text": "[door creaks]"}
			]`,
			wantCount: 1,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"index": 1, "text": "[rain]"}
			]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name: "wrapper object with results key",
			input: `{"results": [
				{"index": 1, "text": "[rain]"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with rewrites key",
			input: `{"rewrites": [
				{"index": 1, "text": "[rain]"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with data key",
			input: `{"data": [
				{"index": 1, "text": "[rain]"}
			]}`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"index": 1, "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty text",
			input:   `[{"index": 1, "text": ""}]`,
			wantErr: true,
		},
		{
			name: "SRT newline escape in text",
			input: `[
				{"index": 1, "text": "Wind howls\Nthrough the trees."}
			]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractRewriteResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"index": 1, "text": "hello"}]`,
			want:  `[{"index": 1, "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"index\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 1, "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"index\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 1, "text": "hello"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"index\": 1}]\n```\n\n  ",
			want:  `[{"index": 1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no escapes",
			input: `plain text`,
			want:  `plain text`,
		},
		{
			name:  "valid newline escape kept",
			input: `line\nbreak`,
			want:  `line\nbreak`,
		},
		{
			name:  "invalid escape doubled",
			input: `wind\Nhowls`,
			want:  `wind\\Nhowls`,
		},
		{
			name:  "mixed escapes",
			input: `a\tb\Nc\"d`,
			want:  `a\tb\\Nc\"d`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixInvalidEscapes(tt.input); got != tt.want {
				t.Errorf("fixInvalidEscapes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []RewriteResult
		want    bool
	}{
		{"empty slice", []RewriteResult{}, false},
		{"nil slice", nil, false},
		{
			"result with text",
			[]RewriteResult{{Index: 1, Text: "[rain]"}},
			true,
		},
		{
			"result with empty text",
			[]RewriteResult{{Index: 1, Text: ""}},
			false,
		},
		{
			"multiple results one valid",
			[]RewriteResult{
				{Index: 1, Text: ""},
				{Index: 2, Text: "valid"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

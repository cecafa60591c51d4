package pipeline

// Notes:
// - Highlighting output is asserted by class names only; exact chroma token
//   markup changes between chroma releases.

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML - Extension Set
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "heading on its own line",
			input:        "# Title\n\nBody",
			wantContains: []string{"<h1>Title</h1>\n", "<p>Body</p>"},
			wantExcludes: []string{"<!DOCTYPE", "<html", "id="},
		},
		{
			name:         "table",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<th>A</th>", "<td>2</td>"},
		},
		{
			name:         "fenced code is highlighted with classes",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
			wantExcludes: []string{"style=\"color"},
		},
		{
			name:         "raw HTML passes through",
			input:        "<details><summary>More</summary>\n\nHidden\n\n</details>",
			wantContains: []string{"<details><summary>More</summary>"},
			wantExcludes: []string{"raw HTML omitted"},
		},
		{
			name:         "image keeps its source",
			input:        "![logo](img/logo.png)",
			wantContains: []string{`<img src="img/logo.png" alt="logo">`},
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := converter.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() = %q, should contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("ToHTML() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# Title")
	if err != context.Canceled {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestGoldmarkConverter_ToHTML_Deterministic(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()
	input := "# A\n\n```go\nx := 1\n```\n\n| a |\n|---|\n| b |"

	first, err := converter.ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := converter.ToHTML(context.Background(), input)
		if err != nil {
			t.Fatalf("ToHTML() error = %v", err)
		}
		if again != first {
			t.Fatalf("ToHTML() run %d differs from first run", i+2)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_HighlightCSS
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_HighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := NewGoldmarkConverter().HighlightCSS()
	if err != nil {
		t.Fatalf("HighlightCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() should style .chroma, got %q", css)
	}
}

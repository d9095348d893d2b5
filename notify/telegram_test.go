package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  Summary
		contains []string
	}{
		{
			name: "saved",
			summary: Summary{
				BaseURL: "https://example.com/report", Pages: 3, Rows: 150,
				StopReason: "empty_page", OutputPath: "out.xlsx", Saved: true,
			},
			contains: []string{"Source: https://example.com/report", "Pages fetched: 3", "Rows collected: 150", "Stopped by: empty_page", "Saved to: out.xlsx"},
		},
		{
			name:     "nothing saved",
			summary:  Summary{BaseURL: "https://example.com/report", Pages: 1, StopReason: "empty_page"},
			contains: []string{"No data to save."},
		},
		{
			name:     "save failed",
			summary:  Summary{Pages: 2, Rows: 10, StopReason: "repeat_page", Err: errors.New("disk full")},
			contains: []string{"Save failed: disk full", "Stopped by: repeat_page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSummary(tt.summary)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)

	long := strings.Repeat("x", 25)
	parts = splitMessage(long+"\nend", 10)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 10)
	}
	assert.Equal(t, long+"\nend\n", strings.Join(parts, ""))
}

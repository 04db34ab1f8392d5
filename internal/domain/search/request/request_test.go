package request

import (
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  what does the Quran say about fasting?  ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "what does the Quran say about fasting?" {
		t.Errorf("Text() = %q, want trimmed", r.Text())
	}
	if r.TopK() != DefaultTopK {
		t.Errorf("TopK() = %d, want %d", r.TopK(), DefaultTopK)
	}
}

func TestNew_ClampsTopK(t *testing.T) {
	r, err := New("patience", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() != MaxTopK {
		t.Errorf("TopK() = %d, want %d", r.TopK(), MaxTopK)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		topK int
	}{
		{"empty", "", 5},
		{"whitespace", "   \n", 5},
		{"too long", strings.Repeat("a", MaxQueryLength+1), 5},
		{"negative top_k", "prayer", -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.text, tc.topK); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewWithLimits(t *testing.T) {
	r, err := NewWithLimits("prayer", 0, 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() != 3 {
		t.Errorf("TopK() = %d, want 3", r.TopK())
	}
}

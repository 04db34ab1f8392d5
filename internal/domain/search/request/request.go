package request

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 5
	MaxTopK        = 50
)

// Request is a validated inbound question.
type Request struct {
	text string
	topK int
}

// New validates and normalizes a question. Defaults: topK=5. TopK is clamped to MaxTopK.
func New(text string, topK int) (Request, error) {
	return NewWithLimits(text, topK, DefaultTopK, MaxTopK)
}

// NewWithLimits is New with configurable default and ceiling for top_k.
func NewWithLimits(text string, topK, defaultTopK, maxTopK int) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("text too long (max %d bytes)", MaxQueryLength)
	}
	if topK < 0 {
		return Request{}, fmt.Errorf("top_k must be positive")
	}
	if topK == 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	return Request{text: text, topK: topK}, nil
}

// Text returns the question text.
func (r *Request) Text() string { return r.text }

// TopK returns the number of verses to return.
func (r *Request) TopK() int { return r.topK }

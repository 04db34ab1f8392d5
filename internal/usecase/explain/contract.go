package explain

import "context"

// Generator is a chat-style completion backend.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// modelNamer is implemented by generators that report their model for metrics.
type modelNamer interface {
	Model() string
}

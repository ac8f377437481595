package ai

import "context"

// Embedder maps text to fixed-dimensionality vectors. EmbedQuery uses the
// retrieval-query task variant where the provider distinguishes it from
// document embedding.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer for a composed prompt.
type Generator interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pdfchat/internal/ai"
	"pdfchat/internal/model"
)

// Index holds the (chunk, embedding) pairs of one document and answers
// nearest-neighbor queries by brute-force cosine similarity. It is immutable
// after construction and safe for concurrent reads.
type Index struct {
	chunks  []model.Chunk
	vectors [][]float32
}

// Scored is one search hit.
type Scored struct {
	Chunk model.Chunk
	Score float32
}

// Build embeds every chunk through embedder (batchSize texts per call) and
// returns a queryable index. Any embedding error aborts the whole build; no
// partial index is ever returned.
func Build(ctx context.Context, chunks []model.Chunk, embedder ai.Embedder, batchSize int) (*Index, error) {
	if batchSize <= 0 {
		batchSize = 10
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d failed: %w", start, end-1, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	return &Index{chunks: chunks, vectors: vectors}, nil
}

// From reconstructs an index from already-computed pairs (persistent store
// load path). Lengths must match.
func From(chunks []model.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	return &Index{chunks: chunks, vectors: vectors}, nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int { return len(ix.chunks) }

// Chunks returns the indexed chunks in original order.
func (ix *Index) Chunks() []model.Chunk { return ix.chunks }

// Vectors returns the embedding vectors, aligned with Chunks.
func (ix *Index) Vectors() [][]float32 { return ix.vectors }

// Search returns up to k chunks ordered by descending cosine similarity to
// queryVec. Ties break deterministically by original chunk order. A k larger
// than the index returns everything.
func (ix *Index) Search(queryVec []float32, k int) []Scored {
	if k <= 0 || len(ix.chunks) == 0 {
		return nil
	}
	scored := make([]Scored, len(ix.chunks))
	for i := range ix.chunks {
		scored[i] = Scored{Chunk: ix.chunks[i], Score: cosineSimilarity(queryVec, ix.vectors[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

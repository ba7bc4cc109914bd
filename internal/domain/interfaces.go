package domain

import "context"

// Point is one stored record in a collection: a unit-normalized vector plus
// plain string payload fields.
type Point struct {
	ID     uint64
	Vector []float32
	Fields map[string]string
}

// ScoredPoint is a search hit with its cosine similarity score.
type ScoredPoint struct {
	Point
	Score float64
}

// Embedder converts text into unit-normalized vectors of a fixed dimension.
// The same implementation must serve ingestion and query time so cosine
// similarity reduces to a dot product.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorIndex is the black-box vector index service: per-category
// collections with create/drop, insert, search and query-by-scroll.
type VectorIndex interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	DropCollection(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, name string, dim int) error
	Insert(ctx context.Context, name string, points []Point) error
	Search(ctx context.Context, name string, vector []float32, topK int) ([]ScoredPoint, error)
	Query(ctx context.Context, name string, limit int) ([]Point, error)
	Count(ctx context.Context, name string) (int, error)
}

// GenerationOptions are the sampling parameters passed through to the
// generative backend.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// Generator drafts text from a prompt. Implementations signal rate limiting
// by returning an error wrapping ErrRateLimited; every other error is
// treated as not retryable.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

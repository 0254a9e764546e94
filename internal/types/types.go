package types

import (
	"context"

	"docupy/internal/models"
)

// Core interfaces

// Embedder turns text into fixed-dimension vectors. The same Embedder
// instance must be used for index build and query so vectors live in one
// embedding space.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Generator produces an answer for a fully rendered prompt and reports the
// token usage and estimated cost of the call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*models.QueryResult, error)
}

// VectorStore persists embedding records and answers nearest-neighbour
// queries. Persist must leave no readable state behind on failure; Load
// reports absence (nil manifest) rather than an error when nothing has
// been built yet.
type VectorStore interface {
	Persist(ctx context.Context, records []models.EmbeddingRecord, manifest Manifest) error
	Load(ctx context.Context) (*Manifest, error)
	Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error)
	Close() error
}

// Retriever is the query-side view of a built index.
type Retriever interface {
	Query(ctx context.Context, question string, k int) ([]models.SearchResult, error)
}

// Extractor turns a source document into raw text.
type Extractor interface {
	Extract(path string) (string, error)
	SupportedExtensions() []string
}

// Manifest records a completed index build. Load uses it to tell a valid
// index from an empty directory or an interrupted build, and to catch
// embedding-model mismatches between build time and query time.
type Manifest struct {
	ChunkCount     int    `json:"chunk_count"`
	EmbeddingModel string `json:"embedding_model"`
	Completed      bool   `json:"completed"`
}

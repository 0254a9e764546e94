package index

import (
	"context"
	"fmt"
	"strconv"

	"docupy/internal/models"
	"docupy/internal/types"
)

type IndexConfig struct {
	// BatchSize is how many chunks go into one embedding call during a build.
	BatchSize int

	// OnProgress is called after each chunk is embedded during a build.
	OnProgress func(done, total int)
}

// Index is the semantic index over one document. Build embeds chunks and
// persists them; Load reattaches to a previous build; Query retrieves the
// nearest chunks for a question. Build and Query share one Embedder, which
// keeps both sides of the index in the same embedding space.
type Index struct {
	config   IndexConfig
	embedder types.Embedder
	store    types.VectorStore
	manifest *types.Manifest
}

func NewWithConfig(embedder types.Embedder, store types.VectorStore, config IndexConfig) *Index {
	return &Index{
		config:   config,
		embedder: embedder,
		store:    store,
	}
}

// Ready reports whether the index has been built or loaded.
func (ix *Index) Ready() bool { return ix.manifest != nil }

// Manifest returns the build manifest, or nil when the index is not ready.
func (ix *Index) Manifest() *types.Manifest { return ix.manifest }

// Build embeds every chunk in batches and persists the records. An empty
// chunk list or an embedding failure aborts the build; the store
// guarantees no partially built index is left readable.
func (ix *Index) Build(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	batchSize := ix.config.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	records := make([]models.EmbeddingRecord, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		vectors, err := ix.embedder.CreateEmbedding(ctx, chunks[start:end])
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != end-start {
			return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), end-start)
		}

		for i, vector := range vectors {
			records = append(records, models.EmbeddingRecord{
				ID:        strconv.Itoa(start + i),
				Content:   chunks[start+i],
				Embedding: vector,
			})
			if ix.config.OnProgress != nil {
				ix.config.OnProgress(len(records), len(chunks))
			}
		}
	}

	manifest := types.Manifest{
		ChunkCount:     len(records),
		EmbeddingModel: ix.embedder.Model(),
		Completed:      true,
	}
	if err := ix.store.Persist(ctx, records, manifest); err != nil {
		return err
	}

	ix.manifest = &manifest
	return nil
}

// Load reattaches to a persisted index. It returns false when nothing has
// been built yet, which is not an error, and fails when the persisted
// embedding model differs from the configured one.
func (ix *Index) Load(ctx context.Context) (bool, error) {
	manifest, err := ix.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if manifest == nil {
		return false, nil
	}
	if manifest.EmbeddingModel != ix.embedder.Model() {
		return false, fmt.Errorf("index was built with embedding model %q, configured model is %q",
			manifest.EmbeddingModel, ix.embedder.Model())
	}
	ix.manifest = manifest
	return true, nil
}

// Query embeds the question and returns the k most relevant chunks, best
// first. The index itself is never mutated by a query.
func (ix *Index) Query(ctx context.Context, question string, k int) ([]models.SearchResult, error) {
	if !ix.Ready() {
		return nil, fmt.Errorf("index has not been built")
	}
	if k <= 0 {
		k = 10
	}

	vectors, err := ix.embedder.CreateEmbedding(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	return ix.store.Search(ctx, vectors[0], k)
}

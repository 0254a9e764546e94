package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"docupy/internal/models"
	"docupy/internal/types"
)

const (
	recordsFile  = "records.json"
	manifestFile = "manifest.json"
)

type StoreConfig struct {
	Path string
}

// Store persists embedding records as files under a directory and answers
// similarity queries by brute-force cosine scan. The manifest is written
// last; a directory without a completed manifest is treated as absent, so
// an interrupted build never masquerades as a valid index.
type Store struct {
	config  StoreConfig
	mu      sync.RWMutex
	records []models.EmbeddingRecord
}

func NewWithConfig(config StoreConfig) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	return &Store{config: config}, nil
}

// Persist writes all records and then the manifest. On any failure the
// manifest is removed so the next Load reports the index as absent.
func (s *Store) Persist(ctx context.Context, records []models.EmbeddingRecord, manifest types.Manifest) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to persist an empty index")
	}

	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	if err := s.writeJSON(recordsFile, records); err != nil {
		s.discard()
		return fmt.Errorf("failed to persist records: %w", err)
	}

	manifest.ChunkCount = len(records)
	manifest.Completed = true
	if err := s.writeJSON(manifestFile, manifest); err != nil {
		s.discard()
		return fmt.Errorf("failed to persist manifest: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Load reads a previously persisted index. A missing directory, missing or
// incomplete manifest, or empty record set all mean "not built yet" and
// return a nil manifest without error.
func (s *Store) Load(ctx context.Context) (*types.Manifest, error) {
	var manifest types.Manifest
	if err := s.readJSON(manifestFile, &manifest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if !manifest.Completed || manifest.ChunkCount == 0 {
		return nil, nil
	}

	var records []models.EmbeddingRecord
	if err := s.readJSON(recordsFile, &records); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if len(records) != manifest.ChunkCount {
		// Manifest and records disagree; treat the build as invalid.
		return nil, fmt.Errorf("index corrupt: manifest records %d chunks, found %d", manifest.ChunkCount, len(records))
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return &manifest, nil
}

// Search returns the limit most similar records, best first. Fewer results
// are returned when the store holds fewer records than requested.
func (s *Store) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil, fmt.Errorf("store has no records loaded")
	}
	if limit <= 0 {
		limit = 10
	}

	scored := make([]models.SearchResult, len(s.records))
	for i, rec := range s.records {
		scored[i] = models.SearchResult{
			Content: rec.Content,
			Score:   cosineSimilarity(rec.Embedding, embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

func (s *Store) Close() error { return nil }

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.config.Path, name), data, 0o644)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.config.Path, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// discard removes whatever a failed build left behind.
func (s *Store) discard() {
	os.Remove(filepath.Join(s.config.Path, manifestFile))
	os.Remove(filepath.Join(s.config.Path, recordsFile))
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

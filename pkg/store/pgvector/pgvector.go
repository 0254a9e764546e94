package pgvector

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"docupy/internal/models"
	"docupy/internal/types"
)

type StoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// Store keeps embedding records in a Postgres table with a pgvector column.
// A single-row manifest table alongside it records build completion, chunk
// count and the embedding model, so a crashed build is never mistaken for
// a valid index.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config StoreConfig) (*Store, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // text-embedding-ada-002
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &Store{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *Store) initialize() error {
	ctx := context.Background()

	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createManifest := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_manifest (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			chunk_count INTEGER NOT NULL,
			embedding_model TEXT NOT NULL,
			completed BOOLEAN NOT NULL
		)`, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createManifest)
	if err != nil {
		return fmt.Errorf("failed to create manifest table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Persist replaces the table contents with the given records in a single
// transaction. The manifest row is written in the same transaction, so a
// failure rolls everything back and the index stays absent.
func (vs *Store) Persist(ctx context.Context, records []models.EmbeddingRecord, manifest types.Manifest) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to persist an empty index")
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s, %s_manifest", vs.config.TableName, vs.config.TableName)); err != nil {
		return fmt.Errorf("failed to clear previous index: %v", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding)
		VALUES ($1, $2, $3)`,
		vs.config.TableName)

	for _, rec := range records {
		_, err = tx.Exec(ctx, stmt,
			rec.ID,
			sanitizeUTF8(rec.Content),
			pgv.NewVector(rec.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %v", err)
		}
	}

	manifestStmt := fmt.Sprintf(`
		INSERT INTO %s_manifest (id, chunk_count, embedding_model, completed)
		VALUES (1, $1, $2, TRUE)`,
		vs.config.TableName)

	if _, err := tx.Exec(ctx, manifestStmt, len(records), manifest.EmbeddingModel); err != nil {
		return fmt.Errorf("failed to write manifest: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Load reads the manifest row. No row, or an incomplete one, means the
// index has not been built; that is reported as a nil manifest, not an
// error.
func (vs *Store) Load(ctx context.Context) (*types.Manifest, error) {
	query := fmt.Sprintf(`
		SELECT chunk_count, embedding_model, completed
		FROM %s_manifest
		WHERE id = 1`,
		vs.config.TableName)

	var manifest types.Manifest
	err := vs.pool.QueryRow(ctx, query).Scan(&manifest.ChunkCount, &manifest.EmbeddingModel, &manifest.Completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %v", err)
	}
	if !manifest.Completed || manifest.ChunkCount == 0 {
		return nil, nil
	}
	return &manifest, nil
}

// Search returns the limit nearest records by cosine distance, best first.
func (vs *Store) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT content, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgv.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %v", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

func (vs *Store) Close() error {
	if vs.pool != nil {
		vs.pool.Close()
	}
	return nil
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  model: "gpt-4o-mini"
  embedding_model: "text-embedding-3-small"
  max_tokens: 1000
  temperature: 0.5
  api_key: "sk-test"

document:
  path: "docs/manual.pdf"

processor:
  chunk_size: 500
  chunk_overlap: 100

index:
  backend: "disk"
  path: "/tmp/index"
  vector_dim: 768

retrieval:
  top_k: 5

history:
  max_turns: 8
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, "gpt-4o-mini", config.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", config.LLM.EmbeddingModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "docs/manual.pdf", config.Document.Path)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 100, config.Processor.ChunkOverlap)
	assert.Equal(t, "/tmp/index", config.Index.Path)
	assert.Equal(t, 768, config.Index.VectorDim)
	assert.Equal(t, 5, config.Retrieval.TopK)
	assert.Equal(t, 8, config.History.MaxTurns)

	// Defaults fill in what the file omitted
	assert.Equal(t, "chunks", config.Index.TableName)
	assert.Equal(t, 32, config.Index.BatchSize)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("{}"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", config.LLM.Model)
	assert.Equal(t, "text-embedding-ada-002", config.LLM.EmbeddingModel)
	assert.Equal(t, 0.7, config.LLM.Temperature)
	assert.Equal(t, 1000, config.Processor.ChunkSize)
	assert.Equal(t, 200, config.Processor.ChunkOverlap)
	assert.Equal(t, "disk", config.Index.Backend)
	assert.Equal(t, 10, config.Retrieval.TopK)
	assert.Equal(t, 20, config.History.MaxTurns)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		applyDefaults(c)
		c.LLM.APIKey = "sk-test"
		return c
	}

	t.Run("valid config", func(t *testing.T) {
		errors := valid().Validate()
		assert.Empty(t, errors)
	})

	t.Run("missing api key", func(t *testing.T) {
		c := valid()
		c.LLM.APIKey = ""
		errors := c.Validate()
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "llm.api_key")
	})

	t.Run("overlap not below chunk size", func(t *testing.T) {
		c := valid()
		c.Processor.ChunkSize = 100
		c.Processor.ChunkOverlap = 100
		errors := c.Validate()
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "chunk_overlap")
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := valid()
		c.Index.Backend = "chroma"
		errors := c.Validate()
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "unknown backend")
	})

	t.Run("pgvector requires db url", func(t *testing.T) {
		c := valid()
		c.Index.Backend = "pgvector"
		c.Index.DBUrl = ""
		errors := c.Validate()
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "index.db_url")
	})

	t.Run("max turns accepts the unlimited sentinel", func(t *testing.T) {
		c := valid()
		c.History.MaxTurns = -1
		assert.Empty(t, c.Validate())
	})

	t.Run("max turns below the sentinel", func(t *testing.T) {
		c := valid()
		c.History.MaxTurns = -2
		errors := c.Validate()
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "history.max_turns")
	})

	t.Run("invalid numbers", func(t *testing.T) {
		c := valid()
		c.LLM.Temperature = 3.0
		c.LLM.MaxTokens = 5000
		c.Retrieval.TopK = -1
		errors := c.Validate()
		assert.Len(t, errors, 3)
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("DOCUPY_DOCUMENT", "env-doc.pdf")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "sk-env", config.LLM.APIKey)
	assert.Equal(t, "postgres://env-db:5432/test", config.Index.DBUrl)
	assert.Equal(t, "env-doc.pdf", config.Document.Path)
}

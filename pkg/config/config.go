package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		Temperature    float64 `yaml:"temperature"`
		MaxTokens      int     `yaml:"max_tokens"`
		APIKey         string  `yaml:"api_key"`
	} `yaml:"llm"`

	Document struct {
		Path string `yaml:"path"`
	} `yaml:"document"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Index struct {
		Backend   string  `yaml:"backend"` // "disk" or "pgvector"
		Path      string  `yaml:"path"`
		DBUrl     string  `yaml:"db_url"`
		TableName string  `yaml:"table_name"`
		VectorDim int     `yaml:"vector_dim"`
		BatchSize int     `yaml:"batch_size"`
		RateLimit float64 `yaml:"rate_limit"` // embedding requests per second at build time
	} `yaml:"index"`

	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`

	History struct {
		MaxTurns int `yaml:"max_turns"` // -1 removes the cap entirely
	} `yaml:"history"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docupy/config.yaml"),
			"/etc/docupy/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-3.5-turbo"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1000
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 200
	}

	if config.Index.Backend == "" {
		config.Index.Backend = "disk"
	}
	if config.Index.Path == "" {
		config.Index.Path = "vector_store"
	}
	if config.Index.TableName == "" {
		config.Index.TableName = "chunks"
	}
	if config.Index.VectorDim == 0 {
		config.Index.VectorDim = 1536
	}
	if config.Index.BatchSize == 0 {
		config.Index.BatchSize = 32
	}
	if config.Index.RateLimit == 0 {
		config.Index.RateLimit = 2.0
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 10
	}

	if config.History.MaxTurns == 0 {
		config.History.MaxTurns = 20
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Index.DBUrl = dbURL
	}
	if doc := os.Getenv("DOCUPY_DOCUMENT"); doc != "" {
		config.Document.Path = doc
	}
}

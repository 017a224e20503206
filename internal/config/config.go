package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"document-indexer/internal/models"
)

const envPrefix = "DOCINDEX"

const (
	BackendMemory   = "memory"
	BackendChromem  = "chromem"
	BackendPostgres = "postgres"
	BackendBleve    = "bleve"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderHash   = "hash"
)

type Config struct {
	Indexer  IndexerConfig  `yaml:"indexer" envconfig:"INDEXER"`
	Store    StoreConfig    `yaml:"store" envconfig:"STORE"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	EmbedLLM LLMConfig      `yaml:"embed_llm" envconfig:"EMBED"`
	LLM      LLMConfig      `yaml:"llm" envconfig:"LLM"`
	RAG      RAGConfig      `yaml:"rag" envconfig:"RAG"`
}

type IndexerConfig struct {
	// 0 means unspecified and falls back to models.DefaultChunkSize
	ChunkSize           int      `yaml:"chunk_size" envconfig:"CHUNK_SIZE"`
	Sources             []string `yaml:"sources" envconfig:"SOURCES"`
	ExtractDocuments    bool     `yaml:"extract_documents" split_words:"true"`
	RenderMarkdown      bool     `yaml:"render_markdown" split_words:"true"`
	DiagnosticsToStderr bool     `yaml:"diagnostics_to_stderr" split_words:"true"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend" split_words:"true"`
	BlevePath string `yaml:"bleve_path" split_words:"true"`
}

type DatabaseConfig struct {
	// Driver is "pgdriver" (default) or "pq"
	Driver   string `yaml:"driver" split_words:"true"`
	URL      string `yaml:"url" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Debug    bool   `yaml:"debug" split_words:"true"`
}

type LLMConfig struct {
	Provider   string `yaml:"provider" split_words:"true"`
	BaseURL    string `yaml:"base_url" split_words:"true"`
	Key        string `yaml:"key" split_words:"true"`
	Model      string `yaml:"model" split_words:"true"`
	Dimensions int    `yaml:"dimensions" split_words:"true"`
}

type RAGConfig struct {
	DBPath         string  `yaml:"db_path" split_words:"true"`
	CollectionName string  `yaml:"collection_name" split_words:"true"`
	InMemory       bool    `yaml:"in_memory" split_words:"true"`
	EncryptionKey  string  `yaml:"encryption_key" split_words:"true"`
	TopK           int     `yaml:"top_k" split_words:"true"`
	ScoreThreshold float32 `yaml:"score_threshold" split_words:"true"`
}

// plain variable names used by OpenRouter setups
type openRouterEnv struct {
	Model   string `envconfig:"MODEL"`
	BaseURL string `envconfig:"BASE_URL"`
	Key     string `envconfig:"OPENROUTER_API_KEY"`
}

// LoadConfig reads the YAML file at path (skipped when path is empty), overlays
// environment variables and applies defaults. A .env file in the working
// directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	var legacy openRouterEnv
	if err := envconfig.Process("", &legacy); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if legacy.Model != "" {
		cfg.LLM.Model = legacy.Model
	}
	if legacy.BaseURL != "" {
		cfg.LLM.BaseURL = legacy.BaseURL
	}
	if legacy.Key != "" {
		cfg.LLM.Key = legacy.Key
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Indexer.ChunkSize == 0 {
		c.Indexer.ChunkSize = models.DefaultChunkSize
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendChromem
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "pgdriver"
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = ProviderHash
	}
	if c.EmbedLLM.Dimensions == 0 {
		c.EmbedLLM.Dimensions = 384
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.RAG.DBPath == "" {
		c.RAG.DBPath = "./chromemdb"
	}
	if c.RAG.CollectionName == "" {
		c.RAG.CollectionName = "autogen_docs"
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.ScoreThreshold == 0 {
		c.RAG.ScoreThreshold = 0.4
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Indexer.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d: must be positive", c.Indexer.ChunkSize)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendChromem, BackendPostgres, BackendBleve:
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	switch c.EmbedLLM.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderHash:
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.EmbedLLM.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported chat provider: %s", c.LLM.Provider)
	}
	if c.RAG.TopK < 0 {
		return fmt.Errorf("invalid top_k %d", c.RAG.TopK)
	}
	if c.Database.Driver != "pgdriver" && c.Database.Driver != "pq" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Store.Backend == BackendPostgres && c.Database.URL == "" {
		return fmt.Errorf("database url is required for the postgres backend")
	}
	return nil
}

func (c *Config) HasLLM() bool {
	return c.LLM.Key != "" && c.LLM.Model != ""
}

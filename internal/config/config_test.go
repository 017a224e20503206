package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.Indexer.ChunkSize)
	assert.Equal(t, BackendChromem, cfg.Store.Backend)
	assert.Equal(t, ProviderHash, cfg.EmbedLLM.Provider)
	assert.Equal(t, 384, cfg.EmbedLLM.Dimensions)
	assert.Equal(t, "autogen_docs", cfg.RAG.CollectionName)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.InDelta(t, 0.4, cfg.RAG.ScoreThreshold, 1e-6)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
indexer:
  chunk_size: 200
  sources: [a.txt, https://example.com]
store:
  backend: memory
rag:
  top_k: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Indexer.ChunkSize)
	assert.Equal(t, []string{"a.txt", "https://example.com"}, cfg.Indexer.Sources)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "indexer:\n  chunk_size: 200\n")
	t.Setenv("DOCINDEX_INDEXER_CHUNK_SIZE", "321")
	t.Setenv("DOCINDEX_STORE_BACKEND", "bleve")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 321, cfg.Indexer.ChunkSize)
	assert.Equal(t, BackendBleve, cfg.Store.Backend)
}

func TestLoadConfig_ShortChunkSizeVariable(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "64")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Indexer.ChunkSize)
}

func TestLoadConfig_OpenRouterVariables(t *testing.T) {
	t.Setenv("MODEL", "openai/gpt-4o-mini")
	t.Setenv("BASE_URL", "https://openrouter.ai/api/v1")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "sk-or-test", cfg.LLM.Key)
	assert.True(t, cfg.HasLLM())
	assert.Empty(t, cfg.EmbedLLM.Model)
}

func TestLoadConfig_RejectsNegativeChunkSize(t *testing.T) {
	path := writeConfig(t, "indexer:\n  chunk_size: -5\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk size")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "store backend"},
		{name: "unknown provider", mutate: func(c *Config) { c.EmbedLLM.Provider = "voyage" }, wantErr: "embedding provider"},
		{name: "unknown chat provider", mutate: func(c *Config) { c.LLM.Provider = "hash" }, wantErr: "chat provider"},
		{name: "negative top k", mutate: func(c *Config) { c.RAG.TopK = -1 }, wantErr: "top_k"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database driver"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Backend = BackendPostgres }, wantErr: "database url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

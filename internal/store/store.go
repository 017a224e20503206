// Package store selects and opens the configured memory store backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"document-indexer/internal/chromemdb"
	"document-indexer/internal/config"
	"document-indexer/internal/db"
	"document-indexer/internal/embedding"
	"document-indexer/internal/indexer"
	"document-indexer/internal/models"
	"document-indexer/internal/store/keyword"
	"document-indexer/internal/store/memory"
)

// Backend is a memory store the CLI can index into, query and reset.
type Backend interface {
	indexer.Store
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	Clear(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*memory.List)(nil)
	_ Backend = (*chromemdb.VectorDBManager)(nil)
	_ Backend = (*db.Store)(nil)
	_ Backend = (*keyword.Index)(nil)
)

// Open builds the backend named by cfg.Store.Backend. Vector backends get an
// embedder from cfg.EmbedLLM.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	log.Debug().Str("backend", cfg.Store.Backend).Msg("Opening store")

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendBleve:
		return keyword.Open(cfg.Store.BlevePath)

	case config.BackendChromem:
		embedder, err := embedding.New(&cfg.EmbedLLM)
		if err != nil {
			return nil, err
		}
		m, err := chromemdb.NewVectorDBManager(chromemdb.Options{
			DBPath:         cfg.RAG.DBPath,
			CollectionName: cfg.RAG.CollectionName,
			InMemory:       cfg.RAG.InMemory,
			EncryptionKey:  cfg.RAG.EncryptionKey,
			ScoreThreshold: cfg.RAG.ScoreThreshold,
		}, embedder)
		if err != nil {
			return nil, err
		}
		if err := restoreExport(ctx, m, &cfg.RAG); err != nil {
			return nil, err
		}
		return m, nil

	case config.BackendPostgres:
		embedder, err := embedding.New(&cfg.EmbedLLM)
		if err != nil {
			return nil, err
		}
		return db.Open(ctx, &cfg.Database, embedder)

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// restoreExport loads a previous encrypted export into an in-memory chromem DB.
func restoreExport(ctx context.Context, m *chromemdb.VectorDBManager, cfg *config.RAGConfig) error {
	if !cfg.InMemory || cfg.EncryptionKey == "" {
		return nil
	}
	path := filepath.Join(cfg.DBPath, cfg.CollectionName+".chromem")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	log.Debug().Str("file", path).Msg("Importing collection")
	return m.Import(ctx)
}

// Persist writes an in-memory chromem collection to its encrypted export
// file. Other backends persist on write and are left alone.
func Persist(ctx context.Context, b Backend, cfg *config.RAGConfig) error {
	m, ok := b.(*chromemdb.VectorDBManager)
	if !ok || !cfg.InMemory || cfg.EncryptionKey == "" {
		return nil
	}
	return m.Export(ctx)
}

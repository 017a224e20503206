package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"document-indexer/internal/embedding"
	"document-indexer/internal/helper"
	"document-indexer/internal/models"
)

const compress = false

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	mu             sync.RWMutex
	db             *chromem.DB
	collection     *chromem.Collection
	embedder       embedding.Embedder
	dbPath         string
	collectionName string
	encryptionKey  string
	filePath       string
	scoreThreshold float32
}

type Options struct {
	DBPath         string
	CollectionName string
	InMemory       bool
	// EncryptionKey enables Export/Import; chromem requires 32 bytes.
	EncryptionKey  string
	ScoreThreshold float32
}

// NewVectorDBManager opens (or creates) the database and its collection.
func NewVectorDBManager(opts Options, embedder embedding.Embedder) (*VectorDBManager, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if opts.CollectionName == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	var db *chromem.DB
	var err error
	if opts.InMemory {
		db = chromem.NewDB()
	} else {
		if err := helper.CreateFolder(opts.DBPath); err != nil {
			return nil, err
		}
		db, err = chromem.NewPersistentDB(opts.DBPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	m := &VectorDBManager{
		db:             db,
		embedder:       embedder,
		dbPath:         opts.DBPath,
		collectionName: opts.CollectionName,
		encryptionKey:  opts.EncryptionKey,
		filePath:       filepath.Join(opts.DBPath, opts.CollectionName+".chromem"),
		scoreThreshold: opts.ScoreThreshold,
	}
	if _, err := m.GetOrCreateCollection(opts.CollectionName); err != nil {
		return nil, err
	}
	return m, nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	// records carry their own vectors; the func only serves QueryText lookups
	c, err := m.db.GetOrCreateCollection(collectionName, nil, m.embedder.EmbedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.mu.Lock()
	m.collection = c
	m.mu.Unlock()
	return c, nil
}

func (m *VectorDBManager) col() *chromem.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection
}

// Append embeds the record and adds it under a fresh ID.
func (m *VectorDBManager) Append(ctx context.Context, record models.MemoryRecord) error {
	vector, err := m.embedder.EmbedQuery(ctx, record.Content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        id,
		Content:   record.Content,
		Metadata:  record.MetadataMap(),
		Embedding: vector,
	}
	if err := m.col().AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	return nil
}

func (m *VectorDBManager) Count() int {
	return m.col().Count()
}

// Search embeds query and returns up to limit documents whose similarity
// reaches the score threshold.
func (m *VectorDBManager) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	vector, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	return m.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       limit,
	})
}

// SearchWithQueryOptions runs a raw chromem query
func (m *VectorDBManager) SearchWithQueryOptions(ctx context.Context, opts chromem.QueryOptions) ([]models.SearchResult, error) {
	// exit if query or embedding is not provided
	if opts.QueryText == "" && opts.QueryEmbedding == nil {
		return nil, fmt.Errorf("either query or embedding must be provided")
	}

	col := m.col()
	// chromem rejects nResults larger than the collection
	if n := col.Count(); opts.NResults > n {
		opts.NResults = n
	}
	if opts.NResults <= 0 {
		return nil, nil
	}

	results, err := col.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < m.scoreThreshold {
			continue
		}
		idx, _ := strconv.Atoi(r.Metadata[models.MetadataChunkIndex])
		out = append(out, models.SearchResult{
			ID:         r.ID,
			Content:    r.Content,
			Source:     r.Metadata[models.MetadataSource],
			ChunkIndex: idx,
			Score:      r.Similarity,
		})
	}
	return out, nil
}

// Clear drops the collection and starts an empty one under the same name.
func (m *VectorDBManager) Clear(ctx context.Context) error {
	if err := m.DeleteCollection(); err != nil {
		return err
	}
	_, err := m.GetOrCreateCollection(m.collectionName)
	return err
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// export to file
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}
	if err := helper.CreateFolder(m.dbPath); err != nil {
		return err
	}

	log.Debug().Str("collection", m.collectionName).Str("file", m.filePath).Bool("compress", compress).Msg("Exporting collection")
	if err := m.db.ExportToFile(m.filePath, compress, m.encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// import from file
func (m *VectorDBManager) Import(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	_, err := m.GetOrCreateCollection(m.collectionName)
	return err
}

func (m *VectorDBManager) Close() error {
	// persistent DBs write through on every add, nothing to flush
	return nil
}

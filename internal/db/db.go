// Package db is the Postgres memory store: records go into a pgvector column
// and search ranks them by cosine distance.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"document-indexer/internal/config"
	"document-indexer/internal/embedding"
	"document-indexer/internal/helper"
	"document-indexer/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string          `bun:"id,pk"`
	Content       string          `bun:"content,notnull"`
	Kind          string          `bun:"kind,notnull"`
	Source        string          `bun:"source,notnull"`
	ChunkIndex    int             `bun:"chunk_index,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
	Score         float64         `bun:"score,scanonly"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(debug),
		bundebug.WithVerbose(debug),
	))
	return db
}

// ConnectDB opens a connection pool with the configured driver.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if cfg.Driver == "pq" {
		return sql.Open("postgres", cfg.URL)
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.URL)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func StoreDocuments(ctx context.Context, db *bun.DB, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

func SearchDocuments(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]Document, error) {
	vec := pgvector.NewVector(queryEmbedding)
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "content", "kind", "source", "chunk_index").
		ColumnExpr("1 - (embedding <=> ?) AS score", vec).
		OrderExpr("embedding <=> ?", vec).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// Store appends memory records to the documents table.
type Store struct {
	db       *bun.DB
	embedder embedding.Embedder
}

// Open connects, ensures the schema exists and returns a ready store.
func Open(ctx context.Context, cfg *config.DatabaseConfig, embedder embedding.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := NewDB(sqldb, cfg.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Debug().Str("driver", cfg.Driver).Msg("Connected to postgres")
	return &Store{db: db, embedder: embedder}, nil
}

func (s *Store) Append(ctx context.Context, record models.MemoryRecord) error {
	vector, err := s.embedder.EmbedQuery(ctx, record.Content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}
	doc := Document{
		ID:         id,
		Content:    record.Content,
		Kind:       string(record.Kind),
		Source:     record.Metadata.Source,
		ChunkIndex: record.Metadata.ChunkIndex,
		Embedding:  pgvector.NewVector(vector),
	}
	if err := StoreDocuments(ctx, s.db, []Document{doc}); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Search returns the limit records closest to query, best first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	docs, err := SearchDocuments(ctx, s.db, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	out := make([]models.SearchResult, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.SearchResult{
			ID:         d.ID,
			Content:    d.Content,
			Source:     d.Source,
			ChunkIndex: d.ChunkIndex,
			Score:      float32(d.Score),
		})
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.NewTruncateTable().Model((*Document)(nil)).Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

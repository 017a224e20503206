// Package indexer drives documents through fetch, normalize and chunk and
// appends one memory record per chunk to a store.
//
// Sources are processed one at a time in input order, each fully written
// before the next is fetched, so records land ordered by source and then by
// chunk index. A source that cannot be fetched is reported on the diagnostics
// writer and skipped. A store that fails to append stops the whole batch.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"document-indexer/internal/chunker"
	"document-indexer/internal/fetcher"
	"document-indexer/internal/models"
	"document-indexer/internal/normalizer"
)

// Store is the append-only sink records are written to.
type Store interface {
	Append(ctx context.Context, record models.MemoryRecord) error
}

// Fetcher resolves a source to its raw text.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (string, error)
}

// StoreError wraps a failed append. It is never recovered by the indexer.
type StoreError struct {
	Source     string
	ChunkIndex int
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to store chunk %d of %s: %v", e.ChunkIndex, e.Source, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ConfigError rejects an indexer that could not run.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

type Indexer struct {
	store       Store
	fetcher     Fetcher
	chunkSize   int
	diagnostics io.Writer
}

type Option func(*Indexer)

// WithChunkSize sets the window size in characters. Default 1500.
func WithChunkSize(size int) Option {
	return func(ix *Indexer) {
		ix.chunkSize = size
	}
}

func WithFetcher(f Fetcher) Option {
	return func(ix *Indexer) {
		ix.fetcher = f
	}
}

// WithDiagnostics sets where per-source failure lines go. Default stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(ix *Indexer) {
		ix.diagnostics = w
	}
}

// New builds an indexer writing to store. The configuration is checked here,
// before any source is touched.
func New(store Store, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		store:       store,
		chunkSize:   models.DefaultChunkSize,
		diagnostics: os.Stdout,
	}
	for _, opt := range opts {
		opt(ix)
	}

	if ix.store == nil {
		return nil, &ConfigError{Field: "store", Msg: "must not be nil"}
	}
	if ix.chunkSize <= 0 {
		return nil, &ConfigError{Field: "chunk size", Msg: fmt.Sprintf("%d is not positive", ix.chunkSize)}
	}
	if ix.fetcher == nil {
		ix.fetcher = fetcher.New()
	}
	if ix.diagnostics == nil {
		ix.diagnostics = io.Discard
	}
	return ix, nil
}

func (ix *Indexer) ChunkSize() int {
	return ix.chunkSize
}

// Index processes sources in order and returns the number of chunks written.
// Fetch failures are reported and skipped. A *StoreError or a cancelled
// context ends the batch; the count written so far is returned with it.
func (ix *Indexer) Index(ctx context.Context, sources []string) (int, error) {
	total := 0
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		content, err := ix.fetcher.Fetch(ctx, source)
		if err != nil {
			ix.reportFailure(source, err)
			continue
		}

		n, err := ix.indexDocument(ctx, source, content)
		total += n
		if err != nil {
			return total, err
		}
		log.Debug().Str("source", source).Int("chunks", n).Msg("Indexed source")
	}

	log.Info().Int("chunks", total).Int("sources", len(sources)).Msg("Indexing finished")
	return total, nil
}

// Chunks returns what Index would write for one document's raw text.
func (ix *Indexer) Chunks(source, content string) []models.Chunk {
	var chunks []models.Chunk
	for i, c := range chunker.All(normalizer.Normalize(content), ix.chunkSize) {
		chunks = append(chunks, models.Chunk{
			Content:    c,
			Source:     source,
			ChunkIndex: i,
		})
	}
	return chunks
}

func (ix *Indexer) indexDocument(ctx context.Context, source, content string) (int, error) {
	written := 0
	for _, chunk := range ix.Chunks(source, content) {
		if err := ix.store.Append(ctx, models.NewTextRecord(chunk)); err != nil {
			return written, &StoreError{Source: source, ChunkIndex: chunk.ChunkIndex, Err: err}
		}
		written++
	}
	return written, nil
}

// AddText appends each text as a single record tagged with source, without
// fetching or chunking. Used to seed plain facts into a store.
func (ix *Indexer) AddText(ctx context.Context, source string, texts []string) (int, error) {
	written := 0
	for _, text := range texts {
		record := models.MemoryRecord{
			Content:  text,
			Kind:     models.MimeTypeText,
			Metadata: models.RecordMetadata{Source: source},
		}
		if err := ix.store.Append(ctx, record); err != nil {
			return written, &StoreError{Source: source, Err: err}
		}
		written++
	}
	return written, nil
}

func (ix *Indexer) reportFailure(source string, err error) {
	detail := err
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		detail = fe.Err
	}
	log.Warn().Err(detail).Str("source", source).Msg("Skipping source")
	fmt.Fprintf(ix.diagnostics, "Error indexing %s: %v\n", source, detail)
}

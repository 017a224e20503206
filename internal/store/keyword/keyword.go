// Package keyword is a bleve-backed memory store ranked by BM25 text
// relevance. It needs no embedding provider.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/rs/zerolog/log"

	"document-indexer/internal/helper"
	"document-indexer/internal/models"
)

const (
	fieldContent    = "content"
	fieldSource     = "source"
	fieldChunkIndex = "chunk_index"
	fieldKind       = "kind"
)

type document struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Kind       string `json:"kind"`
}

// Index wraps a bleve index holding one document per memory record.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

// Open opens the index at path, creating it when missing. An empty path gives
// an in-memory index.
func Open(path string) (*Index, error) {
	m := newMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			log.Debug().Str("path", path).Msg("Creating keyword index")
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword index: %w", err)
	}
	return &Index{index: idx}, nil
}

func newMapping() mapping.IndexMapping {
	content := bleve.NewTextFieldMapping()
	content.Store = true

	source := bleve.NewKeywordFieldMapping()
	source.Store = true

	kind := bleve.NewKeywordFieldMapping()
	kind.Store = true

	chunkIndex := bleve.NewNumericFieldMapping()
	chunkIndex.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldContent, content)
	doc.AddFieldMappingsAt(fieldSource, source)
	doc.AddFieldMappingsAt(fieldKind, kind)
	doc.AddFieldMappingsAt(fieldChunkIndex, chunkIndex)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

func (x *Index) Append(ctx context.Context, record models.MemoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return fmt.Errorf("index is closed")
	}
	doc := document{
		Content:    record.Content,
		Source:     record.Metadata.Source,
		ChunkIndex: record.Metadata.ChunkIndex,
		Kind:       string(record.Kind),
	}
	if err := x.index.Index(id, doc); err != nil {
		return fmt.Errorf("failed to index record: %w", err)
	}
	return nil
}

// Search runs a match query over record content.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, fmt.Errorf("index is closed")
	}

	q := bleve.NewMatchQuery(query)
	q.SetField(fieldContent)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"*"}

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]models.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := models.SearchResult{ID: hit.ID, Score: float32(hit.Score)}
		if v, ok := hit.Fields[fieldContent].(string); ok {
			r.Content = v
		}
		if v, ok := hit.Fields[fieldSource].(string); ok {
			r.Source = v
		}
		if v, ok := hit.Fields[fieldChunkIndex].(float64); ok {
			r.ChunkIndex = int(v)
		}
		out = append(out, r)
	}
	return out, nil
}

func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Clear deletes every document.
func (x *Index) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return fmt.Errorf("index is closed")
	}

	count, err := x.index.DocCount()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	batch := x.index.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

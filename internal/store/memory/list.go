// Package memory is an in-process, list-backed memory store. Records are kept
// in insertion order for the life of the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"document-indexer/internal/helper"
	"document-indexer/internal/models"
)

type entry struct {
	id     string
	record models.MemoryRecord
}

// List keeps every appended record in order.
type List struct {
	mu      sync.RWMutex
	entries []entry
}

func New() *List {
	return &List{}
}

func (l *List) Append(ctx context.Context, record models.MemoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{id: id, record: record})
	return nil
}

// Records returns a copy of the stored records in insertion order.
func (l *List) Records() []models.MemoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.MemoryRecord, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.record
	}
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Search ranks records by the fraction of query terms they contain. Records
// sharing no term with the query are left out.
func (l *List) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []models.SearchResult
	for _, e := range l.entries {
		content := strings.ToLower(e.record.Content)
		hits := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		results = append(results, models.SearchResult{
			ID:         e.id,
			Content:    e.record.Content,
			Source:     e.record.Metadata.Source,
			ChunkIndex: e.record.Metadata.ChunkIndex,
			Score:      float32(hits) / float32(len(terms)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (l *List) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}

func (l *List) Close() error {
	return nil
}

package models

import "strconv"

// MimeType tags the kind of content held by a memory record.
type MimeType string

const MimeTypeText MimeType = "text/plain"

// Chunk is a bounded slice of a document's normalized text.
type Chunk struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// RecordMetadata carries the provenance of a memory record.
type RecordMetadata struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// MemoryRecord is the unit appended to a memory store, one per chunk.
type MemoryRecord struct {
	Content  string         `json:"content"`
	Kind     MimeType       `json:"kind"`
	Metadata RecordMetadata `json:"metadata"`
}

// NewTextRecord builds the record written for a chunk.
func NewTextRecord(chunk Chunk) MemoryRecord {
	return MemoryRecord{
		Content: chunk.Content,
		Kind:    MimeTypeText,
		Metadata: RecordMetadata{
			Source:     chunk.Source,
			ChunkIndex: chunk.ChunkIndex,
		},
	}
}

// MetadataMap flattens the record metadata for backends that only store strings.
func (r MemoryRecord) MetadataMap() map[string]string {
	return map[string]string{
		MetadataSource:     r.Metadata.Source,
		MetadataChunkIndex: strconv.Itoa(r.Metadata.ChunkIndex),
		MetadataMimeType:   string(r.Kind),
	}
}

// SearchResult is a record returned by a store query, best match first.
type SearchResult struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}

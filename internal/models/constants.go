package models

const (
	DefaultChunkSize = 1500 // characters
	InlineSource     = "inline"

	// metadata keys shared by every store backend
	MetadataSource     = "source"
	MetadataChunkIndex = "chunk_index"
	MetadataMimeType   = "mime_type"

	ThinkTag = `(?s)<think>.*?</think>`
)

var (
	RAGSystemPrompt = `You are a helpful assistant. Use the provided context to answer the query.
If the context does not contain the answer, say so.`

	RAGUserPromptTemplate = `Context:
%s
Query: %s`
)

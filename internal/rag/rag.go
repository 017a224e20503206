package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"document-indexer/internal/config"
	"document-indexer/internal/llmservice"
	"document-indexer/internal/models"
)

var thinkTag = regexp.MustCompile(models.ThinkTag)

// Searcher is the read side of a memory store.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

type RAG struct {
	store Searcher
	llm   llms.Model
	cfg   *config.RAGConfig
}

func NewRAG(store Searcher, llm llms.Model, cfg *config.RAGConfig) *RAG {
	return &RAG{store: store, llm: llm, cfg: cfg}
}

// Retrieve returns the top_k memories for query.
func (r *RAG) Retrieve(ctx context.Context, query string) ([]models.SearchResult, error) {
	results, err := r.store.Search(ctx, query, r.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search memory: %w", err)
	}
	log.Debug().Str("query", query).Int("results", len(results)).Msg("Retrieved memories")
	return results, nil
}

// Query answers query with the chat model, grounding it in retrieved memories.
func (r *RAG) Query(ctx context.Context, query string) (*models.PromptResponse, error) {
	if r.llm == nil {
		return nil, fmt.Errorf("chat model is not configured")
	}

	results, err := r.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, models.RAGSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(models.RAGUserPromptTemplate, BuildContext(results), query)),
	}

	resp, err := llmservice.GenerateContent(ctx, r.llm, nil, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from chat model")
	}

	return &models.PromptResponse{
		Query:   query,
		Source:  strings.Join(Sources(results), ", "),
		Content: StripThinking(resp.Choices[0].Content),
	}, nil
}

// BuildContext numbers each memory the way it is shown to the model.
func BuildContext(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, r.Content)
	}
	return b.String()
}

// Sources lists each distinct source once, in rank order.
func Sources(results []models.SearchResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		if r.Source == "" || seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		out = append(out, r.Source)
	}
	return out
}

func StripThinking(answer string) string {
	return strings.TrimSpace(thinkTag.ReplaceAllString(answer, ""))
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"document-indexer/internal/llmservice"
	"document-indexer/internal/rag"
	"document-indexer/internal/store"
)

func askCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.HasLLM() {
				return fmt.Errorf("chat model is not configured: set MODEL and OPENROUTER_API_KEY")
			}

			backend, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer backend.Close()

			llm, err := llmservice.New(&cfg.LLM)
			if err != nil {
				return err
			}

			response, err := rag.NewRAG(backend, llm, &cfg.RAG).Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
			fmt.Fprintf(out, "%s\n\n", response.Query)

			log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
			fmt.Fprintf(out, "%s\n\n", response.Source)

			log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
			fmt.Fprintf(out, "%s\n\n", response.Content)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"document-indexer/internal/store"
)

func searchCmd(global *globalOptions) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the memory store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			if k <= 0 {
				k = cfg.RAG.TopK
			}

			backend, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer backend.Close()

			results, err := backend.Search(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. [%.3f] %s #%d\n%s\n\n", i+1, r.Score, r.Source, r.ChunkIndex, r.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "Number of results (default rag.top_k)")
	return cmd
}

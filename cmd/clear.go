package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"document-indexer/internal/store"
)

func clearCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every record from the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}

			backend, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer backend.Close()

			if err := backend.Clear(cmd.Context()); err != nil {
				return err
			}
			if err := store.Persist(cmd.Context(), backend, &cfg.RAG); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Memory cleared.")
			return nil
		},
	}
}

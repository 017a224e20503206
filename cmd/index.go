package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"document-indexer/internal/config"
	"document-indexer/internal/fetcher"
	"document-indexer/internal/helper"
	"document-indexer/internal/indexer"
	"document-indexer/internal/models"
	"document-indexer/internal/store"
	"document-indexer/internal/store/memory"
)

type indexOptions struct {
	sourcesFile    string
	chunkSize      int
	backend        string
	dryRun         bool
	texts          []string
	extract        bool
	renderMarkdown bool
}

func indexCmd(global *globalOptions) *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index [sources...]",
		Short: "Index files and URLs into the memory store",
		Long: `Fetches each source, strips markup, chunks the text and appends one record
per chunk. Sources that cannot be fetched are reported and skipped. With no
sources on the command line, indexer.sources from the config is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("extract") {
				cfg.Indexer.ExtractDocuments = opts.extract
			}
			if cmd.Flags().Changed("render-markdown") {
				cfg.Indexer.RenderMarkdown = opts.renderMarkdown
			}
			return runIndex(cmd, cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.sourcesFile, "sources-file", "", "File listing one source per line")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Chunk size in characters (overrides config)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Store backend: memory, chromem, postgres or bleve")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Index into memory and print the records")
	cmd.Flags().StringArrayVar(&opts.texts, "text", nil, "Add a text as a single record (repeatable)")
	cmd.Flags().BoolVar(&opts.extract, "extract", true, "Extract text from pdf, docx, pptx and xlsx files")
	cmd.Flags().BoolVar(&opts.renderMarkdown, "render-markdown", false, "Render markdown files before normalizing")

	return cmd
}

func runIndex(cmd *cobra.Command, cfg *config.Config, opts *indexOptions, args []string) error {
	if opts.chunkSize != 0 {
		cfg.Indexer.ChunkSize = opts.chunkSize
	}
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if opts.dryRun {
		cfg.Store.Backend = config.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sources := args
	if opts.sourcesFile != "" {
		fromFile, err := readSourcesFile(opts.sourcesFile)
		if err != nil {
			return err
		}
		sources = append(sources, fromFile...)
	}
	if len(sources) == 0 && len(opts.texts) == 0 {
		sources = cfg.Indexer.Sources
	}
	if len(sources) == 0 && len(opts.texts) == 0 {
		return fmt.Errorf("no sources to index")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	out := cmd.OutOrStdout()
	diagnostics := out
	if cfg.Indexer.DiagnosticsToStderr {
		diagnostics = cmd.ErrOrStderr()
	}

	ix, err := indexer.New(backend,
		indexer.WithChunkSize(cfg.Indexer.ChunkSize),
		indexer.WithDiagnostics(diagnostics),
		indexer.WithFetcher(fetcher.New(
			fetcher.WithDocumentExtraction(cfg.Indexer.ExtractDocuments),
			fetcher.WithMarkdownRendering(cfg.Indexer.RenderMarkdown),
		)),
	)
	if err != nil {
		return err
	}

	if len(opts.texts) > 0 {
		n, err := ix.AddText(ctx, models.InlineSource, opts.texts)
		if err != nil {
			return err
		}
		log.Info().Int("records", n).Msg("Added inline texts")
	}

	total, err := ix.Index(ctx, sources)
	if err != nil {
		var storeErr *indexer.StoreError
		if errors.As(err, &storeErr) {
			fmt.Fprintf(out, "Indexed %d chunks before the store failed\n", total)
		}
		return err
	}
	fmt.Fprintf(out, "Indexed %d chunks from %d documents\n", total, len(sources))

	if opts.dryRun {
		if list, ok := backend.(*memory.List); ok {
			helper.FprettyPrint(out, list.Records())
		}
		return nil
	}
	return store.Persist(ctx, backend, &cfg.RAG)
}

// readSourcesFile returns one source per non-empty line, skipping # comments.
func readSourcesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()
	return parseSources(f)
}

func parseSources(r io.Reader) ([]string, error) {
	var sources []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return sources, nil
}

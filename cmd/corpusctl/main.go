// corpusctl maintains the legal document corpus: it embeds and upserts
// document chunks, deletes them, and reports index statistics, talking to
// the same backends the server uses.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"legal-rag/internal/di"
	"legal-rag/internal/domain"
	"legal-rag/internal/infra/config"
)

var (
	verbose     bool
	batchSize   int
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "corpusctl",
	Short: "Legal corpus maintenance CLI",
	Long: `corpusctl manages the vector index behind the legal assistant.

Example usage:
  corpusctl upsert documents.jsonl   # Embed and index document chunks
  corpusctl delete doc-1 doc-2       # Remove chunks by id
  corpusctl stats                    # Show corpus statistics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upsertCmd = &cobra.Command{
	Use:   "upsert <file.jsonl>",
	Short: "Embed and upsert document chunks from a JSONL file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpsert(cmd.Context(), args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete document chunks by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		components, err := wire(cmd.Context())
		if err != nil {
			return err
		}
		defer components.Close()

		if err := components.Index.Delete(cmd.Context(), args); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		fmt.Printf("Deleted %d chunk(s)\n", len(args))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		components, err := wire(cmd.Context())
		if err != nil {
			return err
		}
		defer components.Close()

		stats, err := components.Index.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		fmt.Printf("Total chunks: %d\n", stats.TotalCount)
		fmt.Printf("Dimension:    %d\n", stats.Dimension)
		fmt.Printf("Namespaces:   %v\n", stats.Namespaces)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	upsertCmd.Flags().IntVar(&batchSize, "batch-size", 32, "documents embedded per provider call")
	upsertCmd.Flags().IntVar(&concurrency, "concurrency", 4, "concurrent embedding batches")
	rootCmd.AddCommand(upsertCmd, deleteCmd, statsCmd)
}

func wire(ctx context.Context) (*di.ApplicationComponents, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return di.NewApplicationComponents(ctx, config.Load(), log)
}

type corpusDocument struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

func runUpsert(ctx context.Context, path string) error {
	raw, err := readDocuments(path)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("no documents found in %s", path)
	}
	docs := splitDocuments(raw)

	components, err := wire(ctx)
	if err != nil {
		return err
	}
	defer components.Close()

	start := time.Now()

	batches := make([][]corpusDocument, 0, (len(docs)+batchSize-1)/batchSize)
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[i:end])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			texts := make([]string, 0, len(batch))
			for _, doc := range batch {
				texts = append(texts, doc.Text)
			}

			vectors, err := components.Encoder.EncodeBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embedding batch failed: %w", err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("embedding count mismatch: got %d for %d documents", len(vectors), len(batch))
			}

			chunks := make([]domain.DocumentChunk, 0, len(batch))
			for i, doc := range batch {
				chunks = append(chunks, domain.DocumentChunk{
					ID:        doc.ID,
					Embedding: vectors[i],
					Metadata: domain.IndexMetadata{
						Text:     doc.Text,
						Source:   doc.Source,
						Category: doc.Category,
					},
				})
			}

			return components.Index.Upsert(gctx, chunks)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Upserted %d chunk(s) in %s\n", len(docs), time.Since(start).Round(time.Millisecond))
	return nil
}

// splitDocuments chunks each document body and assigns ids. Explicit ids
// get an ordinal suffix per chunk; otherwise the content hash serves as a
// stable, dedupe-friendly id.
func splitDocuments(docs []corpusDocument) []corpusDocument {
	var out []corpusDocument
	for _, doc := range docs {
		pieces := domain.ChunkText(doc.Text)
		for _, piece := range pieces {
			id := piece.Hash
			if doc.ID != "" {
				if len(pieces) == 1 {
					id = doc.ID
				} else {
					id = fmt.Sprintf("%s-%d", doc.ID, piece.Ordinal)
				}
			}
			out = append(out, corpusDocument{
				ID:       id,
				Text:     piece.Content,
				Source:   doc.Source,
				Category: doc.Category,
			})
		}
	}
	return out
}

func readDocuments(path string) ([]corpusDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var docs []corpusDocument
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc corpusDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid document on line %d: %w", line, err)
		}
		if doc.Text == "" {
			return nil, fmt.Errorf("document on line %d has no text", line)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return docs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Package main provides the ingestion CLI for the banking knowledge base.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/atlasfin/banking-kb-mcp/internal/embedding"
	"github.com/atlasfin/banking-kb-mcp/internal/index"
	"github.com/atlasfin/banking-kb-mcp/internal/ingest"
	"github.com/atlasfin/banking-kb-mcp/internal/metadata"
	"github.com/atlasfin/banking-kb-mcp/internal/source"
)

var rootCmd = &cobra.Command{
	Use:   "kb-sync",
	Short: "Banking knowledge base ingestion tool",
	Long: `CLI tool for managing the banking knowledge base in Qdrant.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)
  KB_DB_PATH     SQLite source registry path (default: kb.db)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index a directory of documents",
	Long: `Indexes every .md and .txt file under the directory.

The first-level subdirectory name becomes the knowledge category
(e.g. policies/fees.md is indexed under category "policies"); files at
the top level are auto-categorized.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var addURLCmd = &cobra.Command{
	Use:   "add-url <url>",
	Short: "Fetch a web page and index its text",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddURL,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <source-id>",
	Short: "Remove a source and its chunks from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources",
	RunE:  runList,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chunk and source counts",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the chunk collection",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(ingestCmd, addURLCmd, deleteCmd, listCmd, statusCmd, resetCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps bundles everything the subcommands share.
type deps struct {
	index    *index.Qdrant
	sources  *source.Store
	pipeline *ingest.Pipeline
}

func (d *deps) close() {
	d.sources.Close()
	d.index.Close()
}

func buildDeps(ctx context.Context) (*deps, error) {
	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	dbPath := getEnv("KB_DB_PATH", "kb.db")

	client, err := embedding.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(client, 0)

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", qdrantHost, qdrantPort)
	idx, err := index.NewQdrant(qdrantHost, qdrantPort, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := idx.EnsureCollection(ctx); err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	sources, err := source.NewStore(dbPath)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to open source registry: %w", err)
	}

	tagger := metadata.NewTagger(client.Client())
	pipeline := ingest.NewPipeline(idx, sources, ingest.NewFetcher(nil), tagger, nil, 0)

	return &deps{index: idx, sources: sources, pipeline: pipeline}, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := args[0]
	start := time.Now()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	var indexed, failed, totalChunks int
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".markdown" && ext != ".txt" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		text := string(raw)
		if ext != ".txt" {
			text = ingest.MarkdownToPlainText(raw)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		src := &source.Source{
			ID:       uuid.NewString(),
			Type:     source.TypeDocument,
			Name:     filepath.ToSlash(rel),
			Category: categoryFromPath(rel),
			FileType: strings.TrimPrefix(ext, "."),
			FileSize: info.Size(),
		}

		count, err := d.pipeline.IngestText(ctx, src, text)
		if err != nil {
			failed++
			fmt.Printf("  FAIL %s: %v\n", src.Name, err)
			return nil
		}
		indexed++
		totalChunks += count
		fmt.Printf("  ok   %s (%d chunks)\n", src.Name, count)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Ingest complete!")
	fmt.Printf("  Documents: %d indexed, %d failed\n", indexed, failed)
	fmt.Printf("  Chunks: %d\n", totalChunks)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Second))
	return nil
}

// categoryFromPath maps docs/<category>/file.md to <category>. Files at
// the top level have no explicit category and go through auto-tagging.
func categoryFromPath(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func runAddURL(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	src, done, err := d.pipeline.IngestURL(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Fetching %s...\n", args[0])
	result := <-done
	if result.Err != nil {
		return fmt.Errorf("ingestion failed: %w", result.Err)
	}

	fmt.Printf("Indexed %s as %s (%d chunks)\n", src.Name, src.ID, result.ChunkCount)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.pipeline.DeleteSource(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	srcs, err := d.sources.List(ctx)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		fmt.Println("No sources registered")
		return nil
	}

	for _, src := range srcs {
		fmt.Printf("%s  %-10s %-10s %4d chunks  %s\n",
			src.ID, src.Status, src.Category, src.ChunkCount, src.Name)
		if src.ErrorMessage != "" {
			fmt.Printf("  error: %s\n", src.ErrorMessage)
		}
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	points, err := d.index.Count(ctx)
	if err != nil {
		return err
	}
	counts, err := d.sources.CountByStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Collection: %s\n", index.CollectionName)
	fmt.Printf("Chunks: %d\n", points)
	fmt.Printf("Sources: %d ready, %d processing, %d error\n",
		counts[source.StatusReady], counts[source.StatusProcessing], counts[source.StatusError])
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	fmt.Println("Clearing collection...")
	if err := d.index.ClearCollection(ctx); err != nil {
		return err
	}
	fmt.Println("Collection cleared")
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

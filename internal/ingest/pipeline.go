// Package ingest turns raw data sources (files, URLs) into indexed
// knowledge chunks and tracks each source's ingestion lifecycle
// (processing, ready, error) in the source registry.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/atlasfin/banking-kb-mcp/internal/chunk"
	"github.com/atlasfin/banking-kb-mcp/internal/index"
	"github.com/atlasfin/banking-kb-mcp/internal/metadata"
	"github.com/atlasfin/banking-kb-mcp/internal/source"
)

// minTextLength rejects sources whose extracted content is too short to
// be worth indexing.
const minTextLength = 50

// Tagger labels documents that arrive without a category. Implemented by
// metadata.Tagger.
type Tagger interface {
	Tag(ctx context.Context, name, content string) (*metadata.Labels, error)
}

// Result reports the outcome of an asynchronous ingestion.
type Result struct {
	SourceID   string
	ChunkCount int
	Err        error
}

// Pipeline wires chunking, the knowledge index and the source registry
// together.
type Pipeline struct {
	index        index.Index
	sources      *source.Store
	fetcher      *Fetcher
	tagger       Tagger
	logger       *slog.Logger
	maxChunkSize int
}

// NewPipeline creates an ingestion pipeline. tagger may be nil, in which
// case untagged sources fall back to the "document" category. A
// maxChunkSize of 0 uses the chunker default.
func NewPipeline(idx index.Index, sources *source.Store, fetcher *Fetcher, tagger Tagger, logger *slog.Logger, maxChunkSize int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if maxChunkSize <= 0 {
		maxChunkSize = chunk.DefaultMaxChunkSize
	}
	return &Pipeline{
		index:        idx,
		sources:      sources,
		fetcher:      fetcher,
		tagger:       tagger,
		logger:       logger,
		maxChunkSize: maxChunkSize,
	}
}

// ChunkAndIndex splits fullText into chunks and upserts each under the
// deterministic id scheme <documentID>-chunk-<n>. It returns the number
// of chunks created; callers persist that count to reconstruct the chunk
// id set when the document is later deleted.
func (p *Pipeline) ChunkAndIndex(ctx context.Context, documentID, fullText string, meta index.Metadata) (int, error) {
	chunks := chunk.Split(fullText, p.maxChunkSize)

	for i, text := range chunks {
		id := chunk.ID(documentID, i+1)
		tags := append(append([]string{}, meta.Tags...), fmt.Sprintf("chunk-%d", i+1))

		err := p.index.Upsert(ctx, index.Record{
			ID:   id,
			Text: text,
			Metadata: index.Metadata{
				Category: meta.Category,
				Source:   meta.Source,
				Tags:     tags,
			},
		})
		if err != nil {
			// Chunks 1..i are already in the index but the source row
			// will record a chunk count of zero, so DeleteSource could
			// never reclaim them. Remove them now.
			if i > 0 {
				if derr := p.index.Delete(ctx, chunk.IDs(documentID, i)); derr != nil {
					p.logger.Warn("failed to remove partial chunks", "document", documentID, "chunks", i, "error", derr)
				}
			}
			return 0, fmt.Errorf("index chunk %s: %w", id, err)
		}
	}

	p.logger.Info("indexed document", "document", documentID, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestText registers src as processing, indexes text under its id and
// transitions the registry row to ready or error. When src carries no
// category and a tagger is available, the document is auto-labeled
// first; tagging failures degrade to the fallback category rather than
// failing the ingestion.
func (p *Pipeline) IngestText(ctx context.Context, src *source.Source, text string) (int, error) {
	if err := p.sources.Create(ctx, src); err != nil {
		return 0, fmt.Errorf("register source: %w", err)
	}
	return p.process(ctx, src, text)
}

// IngestTextAsync registers src as processing synchronously, then
// completes the ingestion in the background. The returned channel
// receives exactly one Result; callers may also poll the source registry
// for the status transition.
func (p *Pipeline) IngestTextAsync(ctx context.Context, src *source.Source, text string) (<-chan Result, error) {
	if err := p.sources.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("register source: %w", err)
	}

	done := make(chan Result, 1)
	go func() {
		// Detached from the request context: the upload call returns
		// before processing finishes.
		count, err := p.process(context.Background(), src, text)
		done <- Result{SourceID: src.ID, ChunkCount: count, Err: err}
	}()
	return done, nil
}

// IngestURL registers a URL source and fetches, extracts and indexes it
// in the background. The source id is generated here and returned
// immediately.
func (p *Pipeline) IngestURL(ctx context.Context, rawURL string) (*source.Source, <-chan Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, nil, fmt.Errorf("invalid url: %q", rawURL)
	}

	name := parsed.Hostname() + parsed.Path
	if runes := []rune(name); len(runes) > 60 {
		name = string(runes[:60])
	}

	src := &source.Source{
		ID:       uuid.NewString(),
		Type:     source.TypeURL,
		Name:     name,
		Category: "url",
		URL:      rawURL,
	}
	if err := p.sources.Create(ctx, src); err != nil {
		return nil, nil, fmt.Errorf("register source: %w", err)
	}

	done := make(chan Result, 1)
	go func() {
		ctx := context.Background()
		text, err := p.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			p.fail(ctx, src.ID, err)
			done <- Result{SourceID: src.ID, Err: err}
			return
		}
		count, err := p.process(ctx, src, text)
		done <- Result{SourceID: src.ID, ChunkCount: count, Err: err}
	}()
	return src, done, nil
}

// process runs the shared ingestion path for an already-registered
// source and records the terminal status.
func (p *Pipeline) process(ctx context.Context, src *source.Source, text string) (int, error) {
	if len(strings.TrimSpace(text)) < minTextLength {
		err := fmt.Errorf("extracted content is too short or empty")
		p.fail(ctx, src.ID, err)
		return 0, err
	}

	meta := index.Metadata{
		Category: src.Category,
		Source:   src.Name,
		Tags:     []string{src.Name},
	}
	if meta.Category == "" {
		meta.Category = p.labelFor(ctx, src.Name, text)
	}

	count, err := p.ChunkAndIndex(ctx, src.ID, text, meta)
	if err != nil {
		p.fail(ctx, src.ID, err)
		return 0, err
	}

	if err := p.sources.SetReady(ctx, src.ID, count); err != nil {
		return count, fmt.Errorf("mark source ready: %w", err)
	}
	return count, nil
}

// labelFor asks the tagger for a category, degrading to the fallback on
// any failure.
func (p *Pipeline) labelFor(ctx context.Context, name, text string) string {
	if p.tagger == nil {
		return metadata.FallbackCategory
	}
	labels, err := p.tagger.Tag(ctx, name, text)
	if err != nil {
		p.logger.Warn("auto-tagging failed, using fallback category", "source", name, "error", err)
		return metadata.FallbackCategory
	}
	return labels.Category
}

// fail records an error status, logging if even that fails.
func (p *Pipeline) fail(ctx context.Context, id string, cause error) {
	p.logger.Warn("ingestion failed", "source", id, "error", cause)
	if err := p.sources.SetError(ctx, id, cause.Error()); err != nil {
		p.logger.Error("failed to record ingestion error", "source", id, "error", err)
	}
}

// DeleteSource removes a source and its chunks from the index. The chunk
// id set is reconstructed from the persisted chunk count; no per-chunk
// lookup table exists.
func (p *Pipeline) DeleteSource(ctx context.Context, id string) error {
	src, err := p.sources.Get(ctx, id)
	if err != nil {
		return err
	}

	if src.ChunkCount > 0 {
		if err := p.index.Delete(ctx, chunk.IDs(id, src.ChunkCount)); err != nil {
			return fmt.Errorf("delete chunks for %s: %w", id, err)
		}
	}

	if err := p.sources.Delete(ctx, id); err != nil {
		return err
	}

	p.logger.Info("deleted source", "source", id, "chunks", src.ChunkCount)
	return nil
}

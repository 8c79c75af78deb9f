// Package retriever turns natural-language questions into ranked,
// deduplicated, LLM-ready context by querying the knowledge index.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/atlasfin/banking-kb-mcp/internal/index"
)

// DefaultTopK is the number of hits requested when options leave TopK
// unset.
const DefaultTopK = 5

// NoResultsContext is the sentinel returned by FormatContext when there
// is nothing to show. Callers compare against it to detect an empty
// knowledge base answer.
const NoResultsContext = "No relevant information found in knowledge base."

// contextHeader precedes every non-empty formatted context block.
const contextHeader = "Relevant Information from Knowledge Base:"

// Document is one retrieval result. Ordering by descending relevance is
// preserved from the index.
type Document struct {
	ID       string
	Content  string
	Metadata index.Metadata
	Score    float64
}

// Options control a retrieval call. The zero value asks for the top 5
// hits with no filtering.
type Options struct {
	// TopK caps the number of hits requested from the index; <= 0 means
	// DefaultTopK.
	TopK int
	// Category, when set, drops hits whose metadata category differs.
	// Applied after ranking.
	Category string
	// MinScore, when positive, drops hits scoring below it. Applied by
	// the retriever as a post-filter, not pushed into the index.
	MinScore float64
}

// Retriever is stateless apart from its index handle and is safe for
// concurrent use.
type Retriever struct {
	index  index.Index
	logger *slog.Logger
}

// New creates a Retriever. A nil logger falls back to slog.Default.
func New(idx index.Index, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{index: idx, logger: logger}
}

// Retrieve returns the most relevant documents for a query. Failures at
// the index boundary are logged and surface as an empty result, never an
// error: the caller must treat an empty list as "no information found".
// A blank query is valid-but-uninformative input and also yields an
// empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts Options) []Document {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	hits, err := r.index.Query(ctx, query, topK)
	if err != nil {
		r.logger.Warn("knowledge retrieval failed", "query", query, "error", err)
		return nil
	}

	docs := make([]Document, 0, len(hits))
	for _, hit := range hits {
		if opts.MinScore > 0 && hit.Score < opts.MinScore {
			continue
		}
		if opts.Category != "" && hit.Metadata.Category != opts.Category {
			continue
		}
		docs = append(docs, Document{
			ID:       hit.ID,
			Content:  hit.Content,
			Metadata: hit.Metadata,
			Score:    hit.Score,
		})
	}

	return docs
}

// MultiQueryRetrieve runs Retrieve concurrently for several phrasings of
// the same question and merges the results, deduplicating by document id
// with first-seen-wins. Merge order follows the query list, not
// completion order, so deduplication is deterministic.
func (r *Retriever) MultiQueryRetrieve(ctx context.Context, queries []string, opts Options) []Document {
	perQuery := make([][]Document, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			perQuery[i] = r.Retrieve(ctx, query, opts)
		}(i, query)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []Document
	for _, docs := range perQuery {
		for _, doc := range docs {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			merged = append(merged, doc)
		}
	}

	return merged
}

// SearchByCategory is a convenience wrapper for category-scoped search.
// topK <= 0 defaults to 3.
func (r *Retriever) SearchByCategory(ctx context.Context, query, category string, topK int) []Document {
	if topK <= 0 {
		topK = 3
	}
	return r.Retrieve(ctx, query, Options{TopK: topK, Category: category})
}

// FormatContext renders documents into the prompt block injected ahead
// of the LLM call. Each document becomes a numbered block carrying its
// source and category followed by the raw content and a delimiter line.
// Content is not sanitized against the delimiter syntax; a document that
// itself contains the separator makes the output ambiguous to re-parse.
func (r *Retriever) FormatContext(docs []Document) string {
	if len(docs) == 0 {
		return NoResultsContext
	}

	blocks := make([]string, len(docs))
	for i, doc := range docs {
		source := doc.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		category := doc.Metadata.Category
		if category == "" {
			category = "General"
		}
		blocks[i] = fmt.Sprintf("[Document %d] (Source: %s, Category: %s)\n%s\n---",
			i+1, source, category, doc.Content)
	}

	return contextHeader + "\n\n" + strings.Join(blocks, "\n\n")
}

// RetrieveContext retrieves and formats in one call.
func (r *Retriever) RetrieveContext(ctx context.Context, query string, opts Options) string {
	return r.FormatContext(r.Retrieve(ctx, query, opts))
}

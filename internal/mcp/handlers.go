package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasfin/banking-kb-mcp/internal/index"
	"github.com/atlasfin/banking-kb-mcp/internal/intent"
	"github.com/atlasfin/banking-kb-mcp/internal/retriever"
	"github.com/atlasfin/banking-kb-mcp/internal/source"
)

// makeSearchHandler creates the search_kb tool handler.
// Search flow:
// 1. Retrieve top chunks by vector similarity
// 2. Apply minimum score and category post-filters
// 3. Render results as a prompt-ready context block
func makeSearchHandler(rtr *retriever.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchKBInput,
) (*mcp.CallToolResult, SearchKBOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchKBInput) (
		*mcp.CallToolResult, SearchKBOutput, error,
	) {
		docs := rtr.Retrieve(ctx, input.Query, retriever.Options{
			TopK:     input.MaxResults,
			Category: input.Category,
			MinScore: input.MinScore,
		})

		results := make([]SearchResult, 0, len(docs))
		for _, doc := range docs {
			results = append(results, SearchResult{
				ID:       doc.ID,
				Content:  doc.Content,
				Source:   doc.Metadata.Source,
				Category: doc.Metadata.Category,
				Score:    doc.Score,
			})
		}

		output := SearchKBOutput{
			Results: results,
			Context: rtr.FormatContext(docs),
		}
		if len(results) == 0 {
			output.Message = "No matching chunks found. Try broader search terms or drop the category filter."
		}
		return nil, output, nil
	}
}

// makeClassifyHandler creates the classify_message tool handler. The
// classifier is deterministic and never errors; malformed input just
// classifies as unknown.
func makeClassifyHandler(det *intent.Detector) func(
	context.Context, *mcp.CallToolRequest, ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (
		*mcp.CallToolResult, ClassifyOutput, error,
	) {
		result := det.Classify(input.Message)
		sentiment := det.AnalyzeSentiment(input.Message)

		return nil, ClassifyOutput{
			Intent:         string(result.Category),
			Confidence:     result.Confidence,
			Entities:       result.Entities,
			SentimentScore: sentiment.Score,
			SentimentLabel: sentiment.Label,
			Escalate:       det.ShouldEscalate(input.Message, input.AttemptCount),
		}, nil
	}
}

// makeListSourcesHandler creates the list_sources tool handler.
func makeListSourcesHandler(store *source.Store) func(
	context.Context, *mcp.CallToolRequest, ListSourcesInput,
) (*mcp.CallToolResult, ListSourcesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSourcesInput) (
		*mcp.CallToolResult, ListSourcesOutput, error,
	) {
		srcs, err := store.List(ctx)
		if err != nil {
			return nil, ListSourcesOutput{}, fmt.Errorf("failed to list sources: %w", err)
		}

		infos := make([]SourceInfo, 0, len(srcs))
		for _, src := range srcs {
			infos = append(infos, SourceInfo{
				ID:         src.ID,
				Name:       src.Name,
				Type:       src.Type,
				Status:     src.Status,
				Category:   src.Category,
				ChunkCount: src.ChunkCount,
				Error:      src.ErrorMessage,
				CreatedAt:  src.CreatedAt,
			})
		}

		return nil, ListSourcesOutput{Sources: infos, Count: len(infos)}, nil
	}
}

// makeStatusHandler creates the get_kb_status tool handler. It combines
// the vector store point count with source registry counts; a failing
// health probe is reported in the output rather than as a tool error.
func makeStatusHandler(idx *index.Qdrant, store *source.Store) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		output := StatusOutput{Collection: index.CollectionName}

		if err := idx.Health(ctx); err == nil {
			output.Healthy = true
			if count, err := idx.Count(ctx); err == nil {
				output.TotalChunks = int(count)
			}
		}

		counts, err := store.CountByStatus(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count sources: %w", err)
		}
		output.SourcesReady = counts[source.StatusReady]
		output.SourcesProcessing = counts[source.StatusProcessing]
		output.SourcesError = counts[source.StatusError]

		return nil, output, nil
	}
}

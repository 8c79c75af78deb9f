// Package mcp exposes the banking knowledge base over the Model Context
// Protocol.
package mcp

import "time"

// SearchKBInput defines the input parameters for the search_kb tool.
type SearchKBInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query against the banking knowledge base"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of chunks to return"`
	// Category restricts results to a single knowledge category.
	Category string `json:"category,omitempty" jsonschema:"description=Restrict results to one category (e.g. policy, faq, url)"`
	// MinScore is the minimum relevance threshold (0-1).
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum=0,maximum=1,description=Minimum relevance score threshold (0-1)"`
}

// SearchKBOutput contains the search results.
type SearchKBOutput struct {
	// Results is the list of matching chunks, most relevant first.
	Results []SearchResult `json:"results"`
	// Context is the results rendered as a prompt-ready context block.
	Context string `json:"context"`
	// Message provides informational context (e.g., "No matching chunks found").
	Message string `json:"message,omitempty"`
}

// SearchResult represents a single chunk match from semantic search.
type SearchResult struct {
	// ID is the chunk id (e.g., "faq-chunk-3").
	ID string `json:"id"`
	// Content is the chunk text.
	Content string `json:"content"`
	// Source names the document or URL the chunk came from.
	Source string `json:"source"`
	// Category is the knowledge category of the chunk.
	Category string `json:"category"`
	// Score is the similarity score (0-1).
	Score float64 `json:"score"`
}

// ClassifyInput defines the input parameters for the classify_message tool.
type ClassifyInput struct {
	// Message is the customer message to classify.
	Message string `json:"message" jsonschema:"required,description=The customer message to classify"`
	// AttemptCount is how many times automation already failed to resolve
	// this conversation.
	AttemptCount int `json:"attempt_count,omitempty" jsonschema:"minimum=0,default=0,description=Number of prior failed resolution attempts in this conversation"`
}

// ClassifyOutput contains the intent classification for a message.
type ClassifyOutput struct {
	// Intent is the matched intent category.
	Intent string `json:"intent"`
	// Confidence is the classifier confidence for the match.
	Confidence float64 `json:"confidence"`
	// Entities holds values extracted from the message (card type, last
	// four digits, account type, zip code, city).
	Entities map[string]any `json:"entities"`
	// SentimentScore is the normalized sentiment in [-1, 1].
	SentimentScore float64 `json:"sentiment_score"`
	// SentimentLabel is "positive", "neutral" or "negative".
	SentimentLabel string `json:"sentiment_label"`
	// Escalate indicates the conversation should be handed to a human.
	Escalate bool `json:"escalate"`
}

// ListSourcesInput defines the input parameters for the list_sources tool.
// This tool takes no parameters and lists all registered sources.
type ListSourcesInput struct{}

// ListSourcesOutput contains the registered knowledge sources.
type ListSourcesOutput struct {
	// Sources is all registered sources, newest first.
	Sources []SourceInfo `json:"sources"`
	// Count is the total number of sources.
	Count int `json:"count"`
}

// SourceInfo is one registered source as reported by list_sources.
type SourceInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Category   string    `json:"category"`
	ChunkCount int       `json:"chunk_count"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusInput defines the input parameters for the get_kb_status tool.
// This tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the knowledge base.
type StatusOutput struct {
	// Collection is the vector collection name.
	Collection string `json:"collection"`
	// TotalChunks is the number of indexed chunks.
	TotalChunks int `json:"total_chunks"`
	// SourcesReady, SourcesProcessing and SourcesError are source counts
	// by lifecycle status.
	SourcesReady      int `json:"sources_ready"`
	SourcesProcessing int `json:"sources_processing"`
	SourcesError      int `json:"sources_error"`
	// Healthy reports whether the vector store responded to a health probe.
	Healthy bool `json:"healthy"`
}

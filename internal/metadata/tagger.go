// Package metadata derives knowledge-base labels (category and tags)
// for ingested documents using an LLM, for callers that do not supply a
// category themselves.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
)

// DefaultMaxTokens caps content length before truncation.
const DefaultMaxTokens = 16000

// Categories the knowledge base recognizes. Anything else the model
// returns is normalized to "document".
var Categories = []string{"policy", "product", "faq", "procedure", "document", "url"}

// FallbackCategory is used when the model returns an unrecognized label.
const FallbackCategory = "document"

// Labels is the model's JSON response.
type Labels struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Tagger labels documents with GPT-4o.
type Tagger struct {
	client    *openai.Client
	maxTokens int
}

// NewTagger creates a tagger sharing the embedding package's OpenAI
// client. Optional maxTokens overrides the truncation limit.
func NewTagger(client *openai.Client, maxTokens ...int) *Tagger {
	limit := DefaultMaxTokens
	if len(maxTokens) > 0 && maxTokens[0] > 0 {
		limit = maxTokens[0]
	}
	return &Tagger{
		client:    client,
		maxTokens: limit,
	}
}

// Tag labels a document. The returned category is always one of
// Categories.
func (t *Tagger) Tag(ctx context.Context, name, content string) (*Labels, error) {
	truncated := t.truncateContent(content)

	prompt := fmt.Sprintf(`Classify this banking knowledge-base document and provide:
1. A category: exactly one of policy, product, faq, procedure, document
2. Up to 5 short topical tags (e.g. "overdraft", "wire transfer", "card activation")

Document name: %s

Document content:
%s

Respond in JSON format:
{"category": "faq", "tags": ["tag1", "tag2"]}`, name, truncated)

	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4o,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var labels Labels
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &labels); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	labels.Category = normalizeCategory(labels.Category)
	return &labels, nil
}

// normalizeCategory lowercases the model's category and falls back to
// FallbackCategory when it is not a recognized label.
func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, known := range Categories {
		if category == known {
			return category
		}
	}
	return FallbackCategory
}

// truncateContent trims content to the token budget, estimating 4
// characters per token.
func (t *Tagger) truncateContent(content string) string {
	maxChars := t.maxTokens * 4

	if len(content) <= maxChars {
		return content
	}

	log.Printf("Warning: truncating content from %d to %d characters (estimated %d tokens)",
		len(content), maxChars, t.maxTokens)

	return content[:maxChars]
}

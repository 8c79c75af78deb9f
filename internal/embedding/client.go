package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client used for embedding generation and
// knowledge-base auto-tagging.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client. It fails fast when OPENAI_API_KEY
// is not set so misconfiguration surfaces at startup, not on first query.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for packages that share it
// (the metadata tagger).
func (c *Client) Client() *openai.Client {
	return c.client
}

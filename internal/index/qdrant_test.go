//go:build integration

package index

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasfin/banking-kb-mcp/internal/embedding"
)

// setupTestIndex connects to a local Qdrant and a real embedding client.
// Skips when either dependency is unavailable.
func setupTestIndex(t *testing.T) *Qdrant {
	t.Helper()

	if os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}
	client, err := embedding.NewClient()
	require.NoError(t, err)

	q, err := NewQdrant("localhost", 6334, embedding.NewEmbedder(client, 0))
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	require.NoError(t, q.EnsureCollection(context.Background()))
	return q
}

func TestQdrantUpsertQueryDelete(t *testing.T) {
	q := setupTestIndex(t)
	defer q.Close()

	ctx := context.Background()
	docID := fmt.Sprintf("itest-%d", time.Now().UnixNano())

	records := []Record{
		{
			ID:   docID + "-chunk-1",
			Text: "To report a lost or stolen card call the 24 hour hotline immediately.",
			Metadata: Metadata{
				Category: "card_services",
				Source:   "cards.md",
				Tags:     []string{"cards.md", "chunk-1"},
			},
		},
		{
			ID:   docID + "-chunk-2",
			Text: "Branch lobbies are open Monday through Friday from nine to five.",
			Metadata: Metadata{
				Category: "branches",
				Source:   "branches.md",
				Tags:     []string{"branches.md", "chunk-2"},
			},
		},
	}
	for _, rec := range records {
		require.NoError(t, q.Upsert(ctx, rec))
	}

	// Qdrant indexing is eventually consistent.
	time.Sleep(200 * time.Millisecond)

	hits, err := q.Query(ctx, "I lost my credit card, what do I do?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, docID+"-chunk-1", top.ID)
	assert.Equal(t, records[0].Text, top.Content)
	assert.Equal(t, "card_services", top.Metadata.Category)
	assert.Equal(t, "cards.md", top.Metadata.Source)
	assert.Contains(t, top.Metadata.Tags, "chunk-1")
	assert.Greater(t, top.Score, 0.0)

	// Delete by the original chunk ids and confirm they stop matching.
	require.NoError(t, q.Delete(ctx, []string{docID + "-chunk-1", docID + "-chunk-2"}))
	time.Sleep(200 * time.Millisecond)

	hits, err = q.Query(ctx, "I lost my credit card, what do I do?", 5)
	require.NoError(t, err)
	for _, hit := range hits {
		assert.NotEqual(t, docID+"-chunk-1", hit.ID)
		assert.NotEqual(t, docID+"-chunk-2", hit.ID)
	}
}

func TestQdrantUpsertOverwritesSameID(t *testing.T) {
	q := setupTestIndex(t)
	defer q.Close()

	ctx := context.Background()
	id := fmt.Sprintf("itest-%d-chunk-1", time.Now().UnixNano())

	before, err := q.Count(ctx)
	require.NoError(t, err)

	rec := Record{ID: id, Text: "Original text about overdraft fees.", Metadata: Metadata{Category: "fees", Source: "fees.md"}}
	require.NoError(t, q.Upsert(ctx, rec))

	rec.Text = "Revised text about overdraft fees and limits."
	require.NoError(t, q.Upsert(ctx, rec))
	time.Sleep(200 * time.Millisecond)

	after, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after, "re-upserting the same chunk id must not create a second point")

	require.NoError(t, q.Delete(ctx, []string{id}))
}

func TestQdrantEmptyID(t *testing.T) {
	q := setupTestIndex(t)
	defer q.Close()

	err := q.Upsert(context.Background(), Record{Text: "no id"})
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestQdrantHealth(t *testing.T) {
	q := setupTestIndex(t)
	defer q.Close()

	assert.NoError(t, q.Health(context.Background()))
}

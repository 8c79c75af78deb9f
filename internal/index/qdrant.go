package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/atlasfin/banking-kb-mcp/internal/embedding"
)

// CollectionName is the single Qdrant collection holding all knowledge
// chunks.
const CollectionName = "knowledge_chunks"

// vectorName is the named vector carrying chunk embeddings.
const vectorName = "content"

// pointNamespace seeds UUIDv5 derivation of Qdrant point ids from chunk
// ids. Qdrant requires UUID point ids; deriving them deterministically
// keeps the external id scheme (<doc>-chunk-<n>) authoritative, so
// deletion never needs an id mapping.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("banking-kb-mcp/chunks"))

// Qdrant implements Index on a Qdrant collection, embedding text on the
// way in and queries on the way out.
type Qdrant struct {
	client   *qdrant.Client
	embedder *embedding.Embedder
	host     string
	port     int
}

// NewQdrant connects to Qdrant over gRPC and validates health with
// exponential backoff, failing fast when the backend is unreachable.
func NewQdrant(host string, port int, embedder *embedding.Embedder) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	idx := &Qdrant{
		client:   client,
		embedder: embedder,
		host:     host,
		port:     port,
	}

	if err := idx.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return idx, nil
}

// healthCheckWithRetry retries the health probe with exponential backoff:
// 500ms initial, 10s max interval, 30s max elapsed.
func (q *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return q.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (q *Qdrant) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the chunk collection and its payload indexes
// if they do not exist. Idempotent.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     embedding.Dimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Category and source drive post-retrieval filters and source
	// deletion; without payload indexes those scans degrade badly.
	for _, field := range []string{"chunk_id", "category", "source"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}

	return nil
}

// ClearCollection drops and recreates the collection. Used by full
// re-ingestion.
func (q *Qdrant) ClearCollection(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, CollectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return q.EnsureCollection(ctx)
}

// Close closes the underlying gRPC connection.
func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Upsert embeds the record text and stores it as a point whose id is
// derived from the record id. Re-upserting the same id overwrites.
func (q *Qdrant) Upsert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}

	vectors, err := q.embedder.Embed(ctx, []string{rec.Text})
	if err != nil {
		return fmt.Errorf("embed record %s: %w", rec.ID, err)
	}

	tags := make([]any, len(rec.Metadata.Tags))
	for i, tag := range rec.Metadata.Tags {
		tags[i] = tag
	}

	point := &qdrant.PointStruct{
		Id: qdrant.NewIDUUID(pointID(rec.ID)),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			vectorName: qdrant.NewVector(vectors[0]...),
		}),
		Payload: qdrant.NewValueMap(map[string]any{
			"chunk_id": rec.ID,
			"content":  rec.Text,
			"category": rec.Metadata.Category,
			"source":   rec.Metadata.Source,
			"tags":     tags,
		}),
	}

	return q.upsertWithRetry(ctx, []*qdrant.PointStruct{point})
}

// upsertWithRetry writes points with the same backoff policy as the
// health probe.
func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Query embeds the text and runs a vector similarity search. Hits come
// back ordered by descending score; limit <= 0 defaults to 5.
func (q *Qdrant) Query(ctx context.Context, text string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 5
	}

	vectors, err := q.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	using := vectorName
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vectors[0]...),
		Using:          &using,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		payload := result.Payload

		var tags []string
		if list := payload["tags"].GetListValue(); list != nil {
			for _, val := range list.Values {
				tags = append(tags, val.GetStringValue())
			}
		}

		hits = append(hits, Hit{
			ID:      payload["chunk_id"].GetStringValue(),
			Content: payload["content"].GetStringValue(),
			Metadata: Metadata{
				Category: payload["category"].GetStringValue(),
				Source:   payload["source"].GetStringValue(),
				Tags:     tags,
			},
			Score: float64(result.Score),
		})
	}

	return hits, nil
}

// Delete removes the points for the given chunk ids. Missing ids are not
// an error; Qdrant treats the delete as idempotent.
func (q *Qdrant) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if id == "" {
			return ErrEmptyID
		}
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(pointID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// Count returns the number of points in the collection, used by the
// status tool.
func (q *Qdrant) Count(ctx context.Context) (uint64, error) {
	info, err := q.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("get collection info: %w", err)
	}
	return info.GetPointsCount(), nil
}

// pointID derives the deterministic Qdrant UUID for a chunk id.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

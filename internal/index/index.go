// Package index defines the document index capability the knowledge
// retriever and ingestion pipeline depend on: upsert a text record,
// query by natural-language text, delete by id. The concrete provider
// owns embedding, storage and ranking; callers treat it as opaque.
package index

import (
	"context"
	"errors"
)

// Metadata is the record metadata carried through indexing and returned
// with every query hit.
type Metadata struct {
	Category string
	Source   string
	Tags     []string
}

// Record is one indexable unit of text, typically a document chunk with
// a deterministic id.
type Record struct {
	ID       string
	Text     string
	Metadata Metadata
}

// Hit is a scored query result. Query results are ordered by descending
// score.
type Hit struct {
	ID       string
	Content  string
	Metadata Metadata
	Score    float64
}

// Index is the capability contract. Implementations must return hits
// sorted by descending score from Query.
type Index interface {
	Upsert(ctx context.Context, rec Record) error
	Query(ctx context.Context, text string, limit int) ([]Hit, error)
	Delete(ctx context.Context, ids []string) error
}

var (
	// ErrUnreachable reports that the index backend could not be reached
	// at startup.
	ErrUnreachable = errors.New("index backend unreachable")

	// ErrEmptyID reports an upsert or delete with a blank id, which is a
	// caller bug rather than a runtime condition.
	ErrEmptyID = errors.New("record id must not be empty")
)

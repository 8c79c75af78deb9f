// Package chunk splits long-form text into bounded chunks on sentence
// boundaries and owns the deterministic chunk id scheme used by the
// knowledge index.
package chunk

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the chunk size limit in characters.
const DefaultMaxChunkSize = 1000

// sentenceEndRe splits on runs of sentence-ending punctuation. It does
// not treat abbreviations or decimal numbers specially: "Dr. Smith" and
// "3.14" split mid-unit. That boundary behavior is load-bearing for
// round-trip guarantees and is kept as-is.
var sentenceEndRe = regexp.MustCompile(`[.!?]+`)

// Split breaks text into chunks of at most maxSize characters. Sentences
// are accumulated greedily and re-terminated with a period; a chunk is
// flushed when the next sentence would push it past the limit. A single
// sentence longer than maxSize becomes its own oversized chunk: it is
// never dropped and never split mid-sentence. Chunk order matches source
// order. maxSize <= 0 falls back to DefaultMaxChunkSize.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentenceEndRe.Split(text, -1) {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}

		if current.Len()+len(trimmed)+1 > maxSize {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			current.WriteString(trimmed)
			current.WriteString(".")
		} else {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(trimmed)
			current.WriteString(".")
		}
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		chunks = append(chunks, rest)
	}

	return chunks
}

// ID returns the stable identifier for the seq-th chunk (1-based) of a
// document. Ids are reproducible from the document id and position alone,
// so deleting a document can reconstruct its full chunk id set without a
// lookup table.
func ID(documentID string, seq int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, seq)
}

// IDs returns the full chunk id set for a document with count chunks.
func IDs(documentID string, count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = ID(documentID, i+1)
	}
	return ids
}

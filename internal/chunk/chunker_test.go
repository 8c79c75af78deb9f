package chunk

import (
	"strings"
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	if chunks := Split("", 1000); len(chunks) != 0 {
		t.Errorf("Split(\"\") = %v, want empty", chunks)
	}
	if chunks := Split("   \n\t  ", 1000); len(chunks) != 0 {
		t.Errorf("Split(whitespace) = %v, want empty", chunks)
	}
}

func TestSplit_SingleSentence(t *testing.T) {
	chunks := Split("Short text.", 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Short text." {
		t.Errorf("chunk = %q, want %q", chunks[0], "Short text.")
	}
}

// Terminators are normalized: runs of sentence punctuation collapse and
// every sentence is re-terminated with a single period.
func TestSplit_NormalizesTerminators(t *testing.T) {
	chunks := Split("Really?! Yes. Are you sure??", 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "Really. Yes. Are you sure."
	if chunks[0] != want {
		t.Errorf("chunk = %q, want %q", chunks[0], want)
	}
}

func TestSplit_RespectsMaxSize(t *testing.T) {
	// 25 sentences of 95 characters pack 10 to a chunk at maxSize 1000,
	// giving chunks of 10, 10 and 5 sentences.
	sentence := strings.Repeat("x", 95)
	var sentences []string
	for i := 0; i < 25; i++ {
		sentences = append(sentences, sentence)
	}
	text := strings.Join(sentences, ". ") + "."

	chunks := Split(text, 1000)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1000 {
			t.Errorf("chunk %d length %d exceeds max 1000", i, len(chunk))
		}
	}
}

// A single sentence longer than the limit becomes its own oversized
// chunk, never dropped and never split mid-sentence.
func TestSplit_OversizedSentence(t *testing.T) {
	long := strings.Repeat("y", 1500)
	chunks := Split("Short one. "+long+". Another short one.", 1000)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Short one." {
		t.Errorf("chunk 0 = %q", chunks[0])
	}
	if chunks[1] != long+"." {
		t.Errorf("chunk 1 should be the oversized sentence verbatim, got length %d", len(chunks[1]))
	}
	if chunks[2] != "Another short one." {
		t.Errorf("chunk 2 = %q", chunks[2])
	}
}

// Concatenating all chunks and re-splitting on sentence boundaries must
// reproduce the original sentence content in order.
func TestSplit_RoundTrip(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, "The quick brown fox jumps over lazy dog number "+strings.Repeat("z", i%7+1))
	}
	text := strings.Join(sentences, ". ") + "."

	chunks := Split(text, 200)

	var got []string
	for _, chunk := range chunks {
		for _, s := range strings.Split(chunk, ".") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				got = append(got, trimmed)
			}
		}
	}

	if len(got) != len(sentences) {
		t.Fatalf("round trip produced %d sentences, want %d", len(got), len(sentences))
	}
	for i := range sentences {
		if got[i] != sentences[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], sentences[i])
		}
	}
}

func TestSplit_DefaultMaxSize(t *testing.T) {
	text := "One. Two. Three."
	if got := Split(text, 0); len(got) != 1 {
		t.Errorf("Split with maxSize 0 should use default, got %v", got)
	}
}

func TestID(t *testing.T) {
	if got := ID("doc-A", 1); got != "doc-A-chunk-1" {
		t.Errorf("ID = %q, want doc-A-chunk-1", got)
	}

	ids := IDs("doc-A", 3)
	want := []string{"doc-A-chunk-1", "doc-A-chunk-2", "doc-A-chunk-3"}
	if len(ids) != len(want) {
		t.Fatalf("IDs returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

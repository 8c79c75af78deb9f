// Package intent classifies free-text support messages into a fixed set
// of banking intents using a priority-ordered pattern table. It is pure
// computation: no I/O, no shared mutable state, safe for concurrent use.
package intent

import (
	"regexp"
	"sort"
	"strings"
)

// Result is the output of a single classification call.
type Result struct {
	Category   Category
	Confidence float64
	Entities   map[string]any
}

// Sentiment is a keyword-derived sentiment estimate for a message.
type Sentiment struct {
	Score float64 // normalized to [-1, 1]
	Label string  // "positive", "neutral" or "negative"
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Confidence levels are intentionally coarse: the classifier is a fast
// pre-filter, not the final authority on meaning.
const (
	matchConfidence   = 0.9
	noMatchConfidence = 0.5
)

// Entity extraction patterns. The city rule is deliberately
// case-sensitive: it expects a capitalized word sequence after "in" or
// "near".
var (
	cardTypeRe    = regexp.MustCompile(`(?i)\b(credit|debit|atm)\s+card`)
	cardLast4Re   = regexp.MustCompile(`\b(\d{4})\b`)
	accountTypeRe = regexp.MustCompile(`(?i)\b(checking|savings|credit)\b`)
	zipCodeRe     = regexp.MustCompile(`\b(\d{5})\b`)
	cityRe        = regexp.MustCompile(`\b(in|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
)

// Detector classifies messages against the static pattern table.
// The zero value is not usable; construct with NewDetector.
type Detector struct {
	patterns []Pattern
}

// NewDetector builds a detector over the package pattern table, sorted by
// ascending priority. The sort is stable so declaration order breaks ties.
func NewDetector() *Detector {
	sorted := make([]Pattern, len(Patterns))
	copy(sorted, Patterns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Detector{patterns: sorted}
}

// Classify maps a raw user message to an intent. Rules are tested against
// the lowercased, trimmed message; the first match in priority order wins.
// A message matching nothing yields Unknown with confidence 0.5 and only
// the isUrgent entity.
func (d *Detector) Classify(message string) Result {
	normalized := strings.ToLower(strings.TrimSpace(message))

	for _, group := range d.patterns {
		for _, rule := range group.Rules {
			if rule.MatchString(normalized) {
				return Result{
					Category:   group.Category,
					Confidence: matchConfidence,
					Entities:   extractEntities(message, group.Category),
				}
			}
		}
	}

	return Result{
		Category:   Unknown,
		Confidence: noMatchConfidence,
		Entities:   map[string]any{"isUrgent": isUrgent(message)},
	}
}

// extractEntities pulls category-conditional structured fields out of the
// raw message. Extraction is best effort: a failed match simply omits the
// key. Entities are matched against the raw message, not the normalized
// one, because the city rule depends on capitalization.
func extractEntities(message string, category Category) map[string]any {
	entities := map[string]any{}

	switch category {
	case CardLost, CardManagement:
		if m := cardTypeRe.FindStringSubmatch(message); m != nil {
			entities["cardType"] = strings.ToLower(m[1])
		}
		if m := cardLast4Re.FindStringSubmatch(message); m != nil {
			entities["cardLast4"] = m[1]
		}
	case BalanceInquiry, TransactionInquiry:
		if m := accountTypeRe.FindStringSubmatch(message); m != nil {
			entities["accountType"] = strings.ToLower(m[1])
		}
	case BranchLocator:
		if m := zipCodeRe.FindStringSubmatch(message); m != nil {
			entities["zipCode"] = m[1]
		}
		if m := cityRe.FindStringSubmatch(message); m != nil {
			entities["city"] = m[2]
		}
	}

	entities["isUrgent"] = isUrgent(message)
	return entities
}

// isUrgent reports whether the message contains any urgent keyword,
// case-insensitive substring test.
func isUrgent(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range UrgentKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// AnalyzeSentiment scores a message by counting positive and negative
// keyword hits. The raw count is divided by 3 and clamped to [-1, 1];
// labels switch at +/-0.3.
func (d *Detector) AnalyzeSentiment(message string) Sentiment {
	lower := strings.ToLower(message)

	score := 0
	for _, keyword := range PositiveKeywords {
		if strings.Contains(lower, keyword) {
			score++
		}
	}
	for _, keyword := range NegativeKeywords {
		if strings.Contains(lower, keyword) {
			score--
		}
	}

	normalized := float64(score) / 3
	if normalized > 1 {
		normalized = 1
	}
	if normalized < -1 {
		normalized = -1
	}

	label := SentimentNeutral
	switch {
	case normalized > 0.3:
		label = SentimentPositive
	case normalized < -0.3:
		label = SentimentNegative
	}

	return Sentiment{Score: normalized, Label: label}
}

// ShouldEscalate decides whether the conversation should be handed to a
// human. It is a pure function of the message and the attempt count:
// an explicit handoff request always escalates; negative sentiment or
// urgent keywords escalate from the second attempt on.
func (d *Detector) ShouldEscalate(message string, attemptCount int) bool {
	if d.AnalyzeSentiment(message).Label == SentimentNegative && attemptCount >= 2 {
		return true
	}

	result := d.Classify(message)
	if result.Category == HumanHandoff {
		return true
	}

	if urgent, ok := result.Entities["isUrgent"].(bool); ok && urgent && attemptCount >= 2 {
		return true
	}

	return false
}

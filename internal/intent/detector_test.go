package intent

import (
	"strings"
	"testing"
)

func TestClassify_Categories(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name    string
		message string
		want    Category
	}{
		{"lost card", "I lost my credit card", CardLost},
		{"stolen card", "my card was stolen yesterday", CardLost},
		{"cant find card", "I can't find my card anywhere", CardLost},
		{"freeze card", "please freeze my card", CardManagement},
		{"activate card", "how do I activate my card", CardManagement},
		{"check balance", "can you check my balance", BalanceInquiry},
		{"whats balance", "what's my balance right now", BalanceInquiry},
		{"transactions", "show me my recent transactions", TransactionInquiry},
		{"statement", "I need my statement for March", TransactionInquiry},
		{"find branch", "find a branch near me", BranchLocator},
		{"atm near", "is there an atm near the airport", BranchLocator},
		{"speak to agent", "I want to speak to an agent", HumanHandoff},
		{"real person", "let me talk to a real person", HumanHandoff},
		{"faq what is", "what is an overdraft fee", FAQ},
		{"faq explain", "explain wire transfers to me", FAQ},
		{"no match", "asdf qwerty", Unknown},
		{"empty", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Classify(tt.message)
			if got.Category != tt.want {
				t.Errorf("Classify(%q) category = %q, want %q", tt.message, got.Category, tt.want)
			}
		})
	}
}

func TestClassify_Confidence(t *testing.T) {
	detector := NewDetector()

	matched := detector.Classify("I lost my credit card")
	if matched.Confidence != 0.9 {
		t.Errorf("matched confidence = %v, want 0.9", matched.Confidence)
	}

	unmatched := detector.Classify("asdf qwerty")
	if unmatched.Confidence != 0.5 {
		t.Errorf("unmatched confidence = %v, want 0.5", unmatched.Confidence)
	}
	if urgent, ok := unmatched.Entities["isUrgent"].(bool); !ok || urgent {
		t.Errorf("unmatched isUrgent = %v, want false", unmatched.Entities["isUrgent"])
	}
	if len(unmatched.Entities) != 1 {
		t.Errorf("unmatched entities = %v, want only isUrgent", unmatched.Entities)
	}
}

// Priority ordering: a message matching both a high- and low-priority
// category must classify as the high-priority one.
func TestClassify_PriorityShadowing(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		message string
		want    Category
	}{
		// Matches card_lost (1) and faq "how.*do" (5).
		{"I lost my card, how do I get a new one", CardLost},
		// Matches human_handoff (1) and faq (5).
		{"how can I speak to an agent", HumanHandoff},
		// Matches card_lost (1) and card_management "lock.*card" would not,
		// but "card.*stolen" (1) beats "block.*card" (2).
		{"block my card, it was stolen", CardLost},
	}

	for _, tt := range tests {
		got := detector.Classify(tt.message)
		if got.Category != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.message, got.Category, tt.want)
		}
	}
}

func TestClassify_CardEntities(t *testing.T) {
	detector := NewDetector()

	result := detector.Classify("I lost my credit card ending in 1234")
	if result.Category != CardLost {
		t.Fatalf("category = %q, want card_lost", result.Category)
	}
	if result.Entities["cardType"] != "credit" {
		t.Errorf("cardType = %v, want credit", result.Entities["cardType"])
	}
	if result.Entities["cardLast4"] != "1234" {
		t.Errorf("cardLast4 = %v, want 1234", result.Entities["cardLast4"])
	}

	// No card type mentioned: key is simply absent.
	result = detector.Classify("I lost my card")
	if _, ok := result.Entities["cardType"]; ok {
		t.Errorf("cardType should be absent, got %v", result.Entities["cardType"])
	}
	if _, ok := result.Entities["cardLast4"]; ok {
		t.Errorf("cardLast4 should be absent, got %v", result.Entities["cardLast4"])
	}
}

func TestClassify_AccountEntities(t *testing.T) {
	detector := NewDetector()

	result := detector.Classify("check the balance on my savings account")
	if result.Category != BalanceInquiry {
		t.Fatalf("category = %q, want balance_inquiry", result.Category)
	}
	if result.Entities["accountType"] != "savings" {
		t.Errorf("accountType = %v, want savings", result.Entities["accountType"])
	}
}

func TestClassify_BranchEntities(t *testing.T) {
	detector := NewDetector()

	result := detector.Classify("find a branch near 90210")
	if result.Category != BranchLocator {
		t.Fatalf("category = %q, want branch_locator", result.Category)
	}
	if result.Entities["zipCode"] != "90210" {
		t.Errorf("zipCode = %v, want 90210", result.Entities["zipCode"])
	}

	result = detector.Classify("find a branch in New York")
	if result.Entities["city"] != "New York" {
		t.Errorf("city = %v, want New York", result.Entities["city"])
	}

	// Lowercase city names are not captured.
	result = detector.Classify("find a branch in midtown")
	if _, ok := result.Entities["city"]; ok {
		t.Errorf("city should be absent for lowercase input, got %v", result.Entities["city"])
	}
}

func TestClassify_UrgentEntity(t *testing.T) {
	detector := NewDetector()

	result := detector.Classify("URGENT: my card was stolen")
	if urgent, _ := result.Entities["isUrgent"].(bool); !urgent {
		t.Error("isUrgent = false, want true")
	}

	result = detector.Classify("please freeze my card")
	if urgent, _ := result.Entities["isUrgent"].(bool); urgent {
		t.Error("isUrgent = true, want false")
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name      string
		message   string
		wantLabel string
	}{
		{"positive", "Thank you, this was great and helpful", SentimentPositive},
		{"negative", "This is terrible and frustrating", SentimentNegative},
		{"neutral", "I would like to check my balance", SentimentNeutral},
		{"empty", "", SentimentNeutral},
		// One positive hit normalizes to 1/3, just above the 0.3 threshold.
		{"single positive", "good", SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.AnalyzeSentiment(tt.message)
			if got.Label != tt.wantLabel {
				t.Errorf("AnalyzeSentiment(%q) label = %q (score %v), want %q",
					tt.message, got.Label, got.Score, tt.wantLabel)
			}
		})
	}
}

func TestAnalyzeSentiment_ScoreClamped(t *testing.T) {
	detector := NewDetector()

	got := detector.AnalyzeSentiment("great excellent perfect helpful thanks appreciate")
	if got.Score != 1 {
		t.Errorf("score = %v, want clamped to 1", got.Score)
	}

	got = detector.AnalyzeSentiment("terrible awful horrible useless angry")
	if got.Score != -1 {
		t.Errorf("score = %v, want clamped to -1", got.Score)
	}
}

// ShouldEscalate is driven by three booleans: handoff intent, negative
// sentiment with attemptCount >= 2, urgent keyword with attemptCount >= 2.
func TestShouldEscalate(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		name     string
		message  string
		attempts int
		want     bool
	}{
		{"handoff first attempt", "I want to speak to an agent", 1, true},
		{"handoff later attempt", "talk to a real person now", 3, true},
		{"negative first attempt", "this is terrible and frustrating", 1, false},
		{"negative second attempt", "this is terrible and frustrating", 2, true},
		{"urgent first attempt", "help me check my balance", 1, false},
		{"urgent second attempt", "help me check my balance", 2, true},
		{"calm single attempt", "show me my recent transactions", 1, false},
		{"calm many attempts", "show me my recent transactions", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.ShouldEscalate(tt.message, tt.attempts)
			if got != tt.want {
				t.Errorf("ShouldEscalate(%q, %d) = %v, want %v",
					tt.message, tt.attempts, got, tt.want)
			}
		})
	}
}

// The pattern table is configuration: every group must have at least one
// rule, a known category and a positive priority, and the urgent/sentiment
// keyword lists must be lowercase since matching lowercases the input.
func TestPatternTable(t *testing.T) {
	known := map[Category]bool{
		BalanceInquiry: true, BranchLocator: true, CardLost: true,
		CardManagement: true, TransactionInquiry: true, FAQ: true,
		HumanHandoff: true,
	}

	for _, group := range Patterns {
		if !known[group.Category] {
			t.Errorf("pattern table references unexpected category %q", group.Category)
		}
		if len(group.Rules) == 0 {
			t.Errorf("category %q has no rules", group.Category)
		}
		if group.Priority <= 0 {
			t.Errorf("category %q has non-positive priority %d", group.Category, group.Priority)
		}
	}

	for _, list := range [][]string{UrgentKeywords, PositiveKeywords, NegativeKeywords} {
		for _, keyword := range list {
			if keyword != strings.ToLower(keyword) {
				t.Errorf("keyword %q is not lowercase", keyword)
			}
		}
	}
}

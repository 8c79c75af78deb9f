package intent

import "regexp"

// Category is the classified purpose of a user message, drawn from a
// fixed set defined at build time.
type Category string

const (
	BalanceInquiry     Category = "balance_inquiry"
	BranchLocator      Category = "branch_locator"
	CardLost           Category = "card_lost"
	CardManagement     Category = "card_management"
	TransactionInquiry Category = "transaction_inquiry"
	FAQ                Category = "faq"
	HumanHandoff       Category = "human_handoff"
	Unknown            Category = "unknown"
)

// Pattern binds a category to its match rules and a priority.
// Lower priority numbers are checked first; within a category, rules are
// tried in declaration order. The first rule across the priority-sorted
// table that matches wins.
type Pattern struct {
	Category Category
	Rules    []*regexp.Regexp
	Priority int
}

// Patterns is the full classification table. It is static configuration:
// loaded once, never mutated. Card-loss and handoff requests carry the
// highest priority so a looser card-management or FAQ rule can never
// shadow them.
var Patterns = []Pattern{
	{
		Category: CardLost,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)lost.*card`),
			regexp.MustCompile(`(?i)card.*lost`),
			regexp.MustCompile(`(?i)card.*stolen`),
			regexp.MustCompile(`(?i)stolen.*card`),
			regexp.MustCompile(`(?i)missing.*card`),
			regexp.MustCompile(`(?i)can'?t find.*card`),
			regexp.MustCompile(`(?i)cannot find.*card`),
			regexp.MustCompile(`(?i)lost.*debit`),
			regexp.MustCompile(`(?i)lost.*credit`),
		},
		Priority: 1,
	},
	{
		Category: CardManagement,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)freeze.*card`),
			regexp.MustCompile(`(?i)block.*card`),
			regexp.MustCompile(`(?i)unfreeze.*card`),
			regexp.MustCompile(`(?i)unblock.*card`),
			regexp.MustCompile(`(?i)activate.*card`),
			regexp.MustCompile(`(?i)card.*activation`),
			regexp.MustCompile(`(?i)disable.*card`),
			regexp.MustCompile(`(?i)enable.*card`),
			regexp.MustCompile(`(?i)lock.*card`),
			regexp.MustCompile(`(?i)unlock.*card`),
		},
		Priority: 2,
	},
	{
		Category: BalanceInquiry,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)check.*balance`),
			regexp.MustCompile(`(?i)account.*balance`),
			regexp.MustCompile(`(?i)balance.*check`),
			regexp.MustCompile(`(?i)how much.*account`),
			regexp.MustCompile(`(?i)how much.*have`),
			regexp.MustCompile(`(?i)what'?s.*balance`),
			regexp.MustCompile(`(?i)show.*balance`),
			regexp.MustCompile(`(?i)view.*balance`),
			regexp.MustCompile(`(?i)current.*balance`),
			regexp.MustCompile(`(?i)available.*balance`),
		},
		Priority: 2,
	},
	{
		Category: TransactionInquiry,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)transaction`),
			regexp.MustCompile(`(?i)recent.*activity`),
			regexp.MustCompile(`(?i)account.*activity`),
			regexp.MustCompile(`(?i)transaction.*history`),
			regexp.MustCompile(`(?i)recent.*transactions`),
			regexp.MustCompile(`(?i)view.*transactions`),
			regexp.MustCompile(`(?i)statement`),
			regexp.MustCompile(`(?i)purchase.*history`),
			regexp.MustCompile(`(?i)payment.*history`),
		},
		Priority: 3,
	},
	{
		Category: BranchLocator,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)find.*branch`),
			regexp.MustCompile(`(?i)branch.*near`),
			regexp.MustCompile(`(?i)branch.*location`),
			regexp.MustCompile(`(?i)nearest.*branch`),
			regexp.MustCompile(`(?i)branch.*hours`),
			regexp.MustCompile(`(?i)find.*atm`),
			regexp.MustCompile(`(?i)atm.*near`),
			regexp.MustCompile(`(?i)nearest.*atm`),
			regexp.MustCompile(`(?i)branch.*address`),
			regexp.MustCompile(`(?i)where.*branch`),
		},
		Priority: 3,
	},
	{
		Category: HumanHandoff,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)speak.*agent`),
			regexp.MustCompile(`(?i)talk.*agent`),
			regexp.MustCompile(`(?i)human.*agent`),
			regexp.MustCompile(`(?i)speak.*person`),
			regexp.MustCompile(`(?i)talk.*person`),
			regexp.MustCompile(`(?i)speak.*representative`),
			regexp.MustCompile(`(?i)customer.*service`),
			regexp.MustCompile(`(?i)talk.*someone`),
			regexp.MustCompile(`(?i)speak.*someone`),
			regexp.MustCompile(`(?i)real.*person`),
			regexp.MustCompile(`(?i)live.*agent`),
		},
		Priority: 1,
	},
	{
		Category: FAQ,
		Rules: []*regexp.Regexp{
			regexp.MustCompile(`(?i)what.*is`),
			regexp.MustCompile(`(?i)how.*do`),
			regexp.MustCompile(`(?i)how.*can`),
			regexp.MustCompile(`(?i)tell.*me.*about`),
			regexp.MustCompile(`(?i)explain`),
			regexp.MustCompile(`(?i)information.*about`),
			regexp.MustCompile(`(?i)details.*about`),
		},
		Priority: 5,
	},
}

// UrgentKeywords flag high-priority situations regardless of category.
var UrgentKeywords = []string{
	"urgent",
	"emergency",
	"fraud",
	"fraudulent",
	"stolen",
	"unauthorized",
	"help",
	"immediately",
	"asap",
	"scam",
	"hacked",
}

// PositiveKeywords contribute +1 each to the sentiment score.
var PositiveKeywords = []string{
	"thank",
	"thanks",
	"great",
	"excellent",
	"perfect",
	"appreciate",
	"helpful",
	"good",
}

// NegativeKeywords contribute -1 each to the sentiment score.
var NegativeKeywords = []string{
	"frustrated",
	"angry",
	"upset",
	"terrible",
	"awful",
	"horrible",
	"useless",
	"disappointed",
	"ridiculous",
}

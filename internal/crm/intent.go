package crm

import "strings"

// Intent is the coarse classification of a free-text query. Keeping it a
// tagged value (rather than string checks scattered across branches)
// makes the precedence explicit and testable.
type Intent int

const (
	// IntentSearch is the fallback substring search over name/company/email.
	IntentSearch Intent = iota
	// IntentStale asks for relationships gone quiet.
	IntentStale
	// IntentRecruiter asks for recruiter contacts.
	IntentRecruiter
	// IntentHealth asks for a health-ranked contact list.
	IntentHealth
)

func (i Intent) String() string {
	switch i {
	case IntentStale:
		return "stale"
	case IntentRecruiter:
		return "recruiter"
	case IntentHealth:
		return "health"
	default:
		return "search"
	}
}

var (
	staleWords     = []string{"stale", "haven't", "not talked", "inactive", "silent", "long time"}
	recruiterWords = []string{"recruiter", "recruiting", "headhunter", "talent"}
	healthWords    = []string{"health", "score", "top", "best", "active"}
)

// ParseIntent classifies a query. First match wins, in priority order:
// stale, recruiter, health, then the default search.
func ParseIntent(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, staleWords):
		return IntentStale
	case containsAny(q, recruiterWords):
		return IntentRecruiter
	case containsAny(q, healthWords):
		return IntentHealth
	default:
		return IntentSearch
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

package crm

import (
	"regexp"
	"strings"
	"time"
)

// Relationship health is recomputed on read, never persisted: the score
// of a contact decays as time passes even when no rows change.

var tzSuffix = regexp.MustCompile(`[+-]\d{2}:?\d{2}$`)

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseWhen parses the loosely ISO dates that show up in mailbox
// metadata. A trailing timezone offset is tolerated and stripped.
func parseWhen(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	stripped := strings.TrimSpace(tzSuffix.ReplaceAllString(strings.TrimSuffix(s, "Z"), ""))
	if stripped != s {
		for _, layout := range whenLayouts {
			if t, err := time.Parse(layout, stripped); err == nil {
				return t, true
			}
		}
	}
	if len(s) > 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HealthScoreAt computes the 0-100 relationship health score relative to
// an explicit reference time. Recency dominates; frequency adds at most
// 30 points.
func HealthScoreAt(now time.Time, lastContact string, interactions int) int {
	last, ok := parseWhen(lastContact)
	if !ok {
		return 0
	}

	days := int(now.Sub(last).Hours() / 24)

	var recency int
	switch {
	case days <= 7:
		recency = 100
	case days <= 30:
		recency = 80
	case days <= 90:
		recency = 55
	case days <= 180:
		recency = 30
	case days <= 365:
		recency = 15
	default:
		recency = 5
	}

	freq := interactions * 8
	if freq < 0 {
		freq = 0
	}
	if freq > 30 {
		freq = 30
	}

	score := recency + freq
	if score > 100 {
		score = 100
	}
	return score
}

// HealthScore scores against the current time.
func HealthScore(lastContact string, interactions int) int {
	return HealthScoreAt(time.Now(), lastContact, interactions)
}

// HealthScore scores using the engine clock (injectable in tests).
func (e *Engine) HealthScore(lastContact string, interactions int) int {
	return HealthScoreAt(e.now(), lastContact, interactions)
}

// Tier maps a score to its display tier.
func Tier(score int) string {
	switch {
	case score >= 75:
		return "active"
	case score >= 45:
		return "warm"
	case score >= 20:
		return "cooling"
	default:
		return "cold"
	}
}

// TierEmoji maps a score to the traffic-light used in reports.
func TierEmoji(score int) string {
	switch {
	case score >= 75:
		return "🟢"
	case score >= 45:
		return "🟡"
	case score >= 20:
		return "🟠"
	default:
		return "🔴"
	}
}

package crm

import (
	"testing"
	"time"
)

var scoreNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestHealthScoreAt(t *testing.T) {
	day := func(daysAgo int) string {
		return scoreNow.AddDate(0, 0, -daysAgo).Format(dateStore)
	}

	tests := []struct {
		name         string
		lastContact  string
		interactions int
		want         int
	}{
		{"recent with no interactions", day(3), 0, 100},
		{"recent with many interactions caps at 100", day(3), 50, 100},
		{"missing date scores zero regardless of count", "", 50, 0},
		{"unparseable date scores zero", "not a date", 10, 0},
		{"very old with few interactions", day(400), 5, 35},
		{"week boundary", day(7), 0, 100},
		{"just past a week", day(8), 0, 80},
		{"month boundary", day(30), 0, 80},
		{"quarter", day(60), 0, 55},
		{"quarter boundary", day(90), 0, 55},
		{"half year", day(180), 0, 30},
		{"year", day(365), 0, 15},
		{"ancient", day(1000), 0, 5},
		{"frequency adds 8 per interaction", day(60), 2, 71},
		{"frequency caps at 30", day(60), 10, 85},
		{"negative count contributes nothing", day(60), -3, 55},
		{"date-only string", scoreNow.AddDate(0, 0, -3).Format("2006-01-02"), 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HealthScoreAt(scoreNow, tt.lastContact, tt.interactions)
			if got != tt.want {
				t.Errorf("HealthScoreAt(%q, %d) = %d, want %d", tt.lastContact, tt.interactions, got, tt.want)
			}
		})
	}
}

func TestHealthScoreDeterministic(t *testing.T) {
	last := scoreNow.AddDate(0, 0, -45).Format(dateStore)
	first := HealthScoreAt(scoreNow, last, 3)
	for i := 0; i < 10; i++ {
		if got := HealthScoreAt(scoreNow, last, 3); got != first {
			t.Fatalf("score changed between calls: %d then %d", first, got)
		}
	}
}

func TestHealthScoreMonotonic(t *testing.T) {
	// More recent contact never lowers the score.
	prev := -1
	for daysAgo := 500; daysAgo >= 0; daysAgo -= 10 {
		last := scoreNow.AddDate(0, 0, -daysAgo).Format(dateStore)
		got := HealthScoreAt(scoreNow, last, 2)
		if got < prev {
			t.Fatalf("score decreased as contact got more recent: %d days ago scored %d, previous %d", daysAgo, got, prev)
		}
		prev = got
	}

	// More interactions never lower the score.
	last := scoreNow.AddDate(0, 0, -100).Format(dateStore)
	prev = -1
	for count := 0; count <= 10; count++ {
		got := HealthScoreAt(scoreNow, last, count)
		if got < prev {
			t.Fatalf("score decreased as interactions grew: %d interactions scored %d, previous %d", count, got, prev)
		}
		prev = got
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		score int
		tier  string
		emoji string
	}{
		{100, "active", "🟢"},
		{75, "active", "🟢"},
		{74, "warm", "🟡"},
		{45, "warm", "🟡"},
		{44, "cooling", "🟠"},
		{20, "cooling", "🟠"},
		{19, "cold", "🔴"},
		{0, "cold", "🔴"},
	}
	for _, tt := range tests {
		if got := Tier(tt.score); got != tt.tier {
			t.Errorf("Tier(%d) = %q, want %q", tt.score, got, tt.tier)
		}
		if got := TierEmoji(tt.score); got != tt.emoji {
			t.Errorf("TierEmoji(%d) = %q, want %q", tt.score, got, tt.emoji)
		}
	}
}

func TestParseWhen(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want string
	}{
		{"2026-03-12 09:30:00", true, "2026-03-12"},
		{"2026-03-12T09:30:00Z", true, "2026-03-12"},
		{"2026-03-12T09:30:00", true, "2026-03-12"},
		{"2026-03-12T09:30:00+05:30", true, "2026-03-12"},
		{"2026-03-12", true, "2026-03-12"},
		{"2026-03-12 09:30:00.123456", true, "2026-03-12"},
		{"", false, ""},
		{"yesterday", false, ""},
		{"None", false, ""},
	}
	for _, tt := range tests {
		got, ok := parseWhen(tt.in)
		if ok != tt.ok {
			t.Errorf("parseWhen(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("parseWhen(%q) = %s, want day %s", tt.in, got, tt.want)
		}
	}
}

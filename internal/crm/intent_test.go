package crm

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"who's gone stale?", IntentStale},
		{"haven't talked to in a while", IntentStale},
		{"people I've not talked to", IntentStale},
		{"inactive relationships", IntentStale},
		{"show recruiters", IntentRecruiter},
		{"anyone recruiting?", IntentRecruiter},
		{"headhunter contacts", IntentRecruiter},
		{"relationship health", IntentHealth},
		{"top contacts", IntentHealth},
		{"best relationships", IntentHealth},
		{"huxley", IntentSearch},
		{"acme corp", IntentSearch},
		{"", IntentSearch},
		// Priority: stale beats recruiter beats health.
		{"stale recruiters", IntentStale},
		{"recruiter health scores", IntentRecruiter},
		{"inactive top talent", IntentStale},
		// Case-insensitive.
		{"STALE CONTACTS", IntentStale},
		{"Show Recruiters", IntentRecruiter},
	}

	for _, tt := range tests {
		if got := ParseIntent(tt.query); got != tt.want {
			t.Errorf("ParseIntent(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestIntentString(t *testing.T) {
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentSearch, "search"},
		{IntentStale, "stale"},
		{IntentRecruiter, "recruiter"},
		{IntentHealth, "health"},
	}
	for _, tt := range tests {
		if got := tt.intent.String(); got != tt.want {
			t.Errorf("Intent(%d).String() = %q, want %q", tt.intent, got, tt.want)
		}
	}
}

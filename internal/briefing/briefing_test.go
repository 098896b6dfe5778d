package briefing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/openclaw/rolodex/internal/config"
	"github.com/openclaw/rolodex/internal/crm"
	"github.com/openclaw/rolodex/internal/db"
	"github.com/openclaw/rolodex/internal/pipeline"
)

func newTestEngine(t *testing.T) *crm.Engine {
	t.Helper()
	database, err := db.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.ApplySchema(database); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return crm.NewEngine(database, config.DefaultRules(), []string{"me@example.com"})
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		subject string
		want    int
	}{
		{"URGENT: server down", 3},
		{"need this asap", 3},
		{"Deadline tomorrow", 3},
		{"quick question", 1},
		{"please review", 1},
		{"weekly sync notes", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := urgency(tt.subject); got != tt.want {
			t.Errorf("urgency(%q) = %d, want %d", tt.subject, got, tt.want)
		}
	}
}

func TestUrgentMail(t *testing.T) {
	eng := newTestEngine(t)

	envelopes := []crm.Envelope{
		{From: crm.Address{Name: "Ada", Addr: "ada@acme.com"}, Subject: "quick question", Date: "2026-03-10 09:00:00"},
		{From: crm.Address{Name: "Grace", Addr: "grace@navy.mil"}, Subject: "URGENT: demo today", Date: "2026-03-09 09:00:00"},
		{From: crm.Address{Addr: "noreply@shop.com"}, Subject: "urgent offer!!!", Date: "2026-03-10 09:00:00"},
		{From: crm.Address{Name: "Alan", Addr: "alan@bletchley.org"}, Subject: "lunch sometime", Date: "2026-03-10 09:00:00"},
	}

	urgent := UrgentMail(eng, envelopes, 5)
	if len(urgent) != 2 {
		t.Fatalf("got %d urgent, want 2 (noise and non-urgent filtered): %+v", len(urgent), urgent)
	}
	// High urgency first even though it is older.
	if urgent[0].From != "Grace" || urgent[0].Urgency != 3 {
		t.Errorf("first urgent = %+v, want Grace at urgency 3", urgent[0])
	}
	if urgent[1].From != "Ada" || urgent[1].Urgency != 1 {
		t.Errorf("second urgent = %+v, want Ada at urgency 1", urgent[1])
	}
	if urgent[0].Date != "2026-03-09" {
		t.Errorf("date should be trimmed to the day, got %q", urgent[0].Date)
	}
}

func TestUrgentMailLimit(t *testing.T) {
	eng := newTestEngine(t)

	var envelopes []crm.Envelope
	for i := 0; i < 10; i++ {
		envelopes = append(envelopes, crm.Envelope{
			From:    crm.Address{Name: "Ada", Addr: "ada@acme.com"},
			Subject: "urgent thing",
			Date:    "2026-03-10 09:00:00",
		})
	}
	if got := UrgentMail(eng, envelopes, 3); len(got) != 3 {
		t.Errorf("got %d urgent, want limit of 3", len(got))
	}
}

func TestComposeAndText(t *testing.T) {
	eng := newTestEngine(t)
	database := eng.DB()

	if _, err := pipeline.Add(database, "Acme", "Engineer", "interview", "2026-03-01", "", ""); err != nil {
		t.Fatalf("pipeline add failed: %v", err)
	}
	if _, err := pipeline.AddFollowUp(database, "Send portfolio", "2026-03-20", "high", 0, 0); err != nil {
		t.Fatalf("follow-up add failed: %v", err)
	}
	if _, err := eng.Ingest([]crm.Envelope{
		{From: crm.Address{Name: "Old Friend", Addr: "old@friend.com"}, To: crm.Address{Addr: "me@example.com"}, Subject: "hi", Date: "2024-01-01 10:00:00"},
	}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	b, err := Compose(database, eng, []crm.Envelope{
		{From: crm.Address{Name: "Grace", Addr: "grace@navy.mil"}, Subject: "deadline friday", Date: "2026-03-10 09:00:00"},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(b.UrgentMail) != 1 {
		t.Errorf("UrgentMail = %d, want 1", len(b.UrgentMail))
	}
	if b.Pipeline["interview"] != 1 {
		t.Errorf("Pipeline = %v, want interview:1", b.Pipeline)
	}
	if b.Rates == nil || b.Rates.TotalApplications != 1 || b.Rates.InterviewRate != 100 {
		t.Errorf("Rates = %+v, want 1 application at 100%% interview rate", b.Rates)
	}
	if len(b.FollowUps) != 1 {
		t.Errorf("FollowUps = %d, want 1", len(b.FollowUps))
	}
	if len(b.Stale) != 1 {
		t.Errorf("Stale = %d, want 1", len(b.Stale))
	}

	text := b.Text()
	for _, want := range []string{
		"DAILY BRIEFING",
		"URGENT EMAILS",
		"Grace",
		"JOB PIPELINE",
		"Total: 1 applications",
		"Response rate: 100%",
		"PENDING FOLLOW-UPS",
		"Send portfolio",
		"STALE RELATIONSHIPS",
		"Old Friend",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q:\n%s", want, text)
		}
	}
}

func TestComposeEmptyDatabase(t *testing.T) {
	eng := newTestEngine(t)

	b, err := Compose(eng.DB(), eng, nil)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	text := b.Text()
	for _, want := range []string{
		"No urgent emails detected",
		"No pending follow-ups",
		"All relationships active",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q:\n%s", want, text)
		}
	}
}

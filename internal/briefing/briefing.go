// Package briefing composes the morning report: urgent mail, job
// pipeline, pending follow-ups, and relationships going quiet.
package briefing

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openclaw/rolodex/internal/crm"
	"github.com/openclaw/rolodex/internal/pipeline"
)

var (
	highUrgencyWords = []string{"urgent", "asap", "today", "deadline", "important", "response needed"}
	lowUrgencyWords  = []string{"please", "help", "question", "feedback"}
)

// UrgentEmail is a recent envelope whose subject suggests it needs a
// reply.
type UrgentEmail struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Urgency int    `json:"urgency"`
}

// Briefing is the assembled daily report.
type Briefing struct {
	Date       string                `json:"date"`
	UrgentMail []UrgentEmail         `json:"urgent_mail"`
	Pipeline   map[string]int        `json:"pipeline"`
	Rates      *pipeline.RatesReport `json:"rates"`
	RecentJobs []pipeline.Entry      `json:"recent_jobs"`
	FollowUps  []pipeline.FollowUp   `json:"follow_ups"`
	Stale      []crm.ContactResult   `json:"stale"`
}

// urgency scores a subject line; zero means not urgent.
func urgency(subject string) int {
	s := strings.ToLower(subject)
	for _, w := range highUrgencyWords {
		if strings.Contains(s, w) {
			return 3
		}
	}
	for _, w := range lowUrgencyWords {
		if strings.Contains(s, w) {
			return 1
		}
	}
	return 0
}

// UrgentMail filters recent envelopes down to the ones worth flagging,
// most urgent and newest first.
func UrgentMail(eng *crm.Engine, envelopes []crm.Envelope, limit int) []UrgentEmail {
	if limit <= 0 {
		limit = 5
	}
	var urgent []UrgentEmail
	for _, env := range envelopes {
		addr := strings.ToLower(strings.TrimSpace(env.From.Addr))
		if addr == "" || eng.IsNoise(addr) {
			continue
		}
		u := urgency(env.Subject)
		if u == 0 {
			continue
		}
		from := strings.TrimSpace(env.From.Name)
		if from == "" {
			from = addr
		}
		date := env.Date
		if len(date) > 10 {
			date = date[:10]
		}
		urgent = append(urgent, UrgentEmail{From: from, Subject: env.Subject, Date: date, Urgency: u})
	}
	sort.SliceStable(urgent, func(i, j int) bool {
		if urgent[i].Urgency != urgent[j].Urgency {
			return urgent[i].Urgency > urgent[j].Urgency
		}
		return urgent[i].Date > urgent[j].Date
	})
	if len(urgent) > limit {
		urgent = urgent[:limit]
	}
	return urgent
}

// Compose assembles the briefing. The envelopes are the last few days of
// mail fetched by the caller; pass nil to skip the urgent-mail section.
func Compose(db *sql.DB, eng *crm.Engine, envelopes []crm.Envelope) (*Briefing, error) {
	counts, err := pipeline.StatusCounts(db)
	if err != nil {
		return nil, err
	}
	rates, err := pipeline.Rates(db)
	if err != nil {
		return nil, err
	}
	recent, err := pipeline.List(db, 5)
	if err != nil {
		return nil, err
	}
	followUps, err := pipeline.PendingFollowUps(db, 10)
	if err != nil {
		return nil, err
	}
	stale, err := eng.Stale(10)
	if err != nil {
		return nil, err
	}

	return &Briefing{
		Date:       time.Now().Format("Monday, January 2, 2006"),
		UrgentMail: UrgentMail(eng, envelopes, 5),
		Pipeline:   counts,
		Rates:      rates,
		RecentJobs: recent,
		FollowUps:  followUps,
		Stale:      stale,
	}, nil
}

var statusEmoji = map[string]string{
	"discovered": "🔍",
	"applied":    "📤",
	"screening":  "📋",
	"interview":  "🎤",
	"offer":      "🎉",
	"rejected":   "❌",
	"withdrawn":  "↩️",
}

var priorityEmoji = map[string]string{
	"urgent": "🔴",
	"high":   "🟠",
	"medium": "🟡",
	"low":    "🟢",
}

// Text renders the briefing for the console or a chat message.
func (b *Briefing) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 DAILY BRIEFING — %s\n", b.Date)
	sb.WriteString(strings.Repeat("=", 40) + "\n")

	sb.WriteString("\n📧 URGENT EMAILS\n")
	if len(b.UrgentMail) == 0 {
		sb.WriteString("✅ No urgent emails detected\n")
	}
	for _, e := range b.UrgentMail {
		emoji := "🟡"
		if e.Urgency >= 3 {
			emoji = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s\n   %s\n", emoji, e.From, truncate(e.Subject, 48))
	}

	sb.WriteString("\n💼 JOB PIPELINE\n")
	total := 0
	for _, n := range b.Pipeline {
		total += n
	}
	fmt.Fprintf(&sb, "Total: %d applications\n", total)
	for _, status := range pipeline.Statuses {
		if n := b.Pipeline[status]; n > 0 {
			emoji := statusEmoji[status]
			if emoji == "" {
				emoji = "•"
			}
			fmt.Fprintf(&sb, "%s %s: %d\n", emoji, capitalize(status), n)
		}
	}
	if b.Rates != nil && b.Rates.TotalApplications > 0 {
		fmt.Fprintf(&sb, "Response rate: %.0f%% | Interview: %.0f%% | Offer: %.0f%%\n",
			b.Rates.ResponseRate, b.Rates.InterviewRate, b.Rates.OfferRate)
	}
	for i, j := range b.RecentJobs {
		if i == 0 {
			sb.WriteString("Recent:\n")
		}
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "• %s — %s (%s)\n", j.Company, j.Role, j.Status)
	}

	sb.WriteString("\n📋 PENDING FOLLOW-UPS\n")
	if len(b.FollowUps) == 0 {
		sb.WriteString("✅ No pending follow-ups\n")
	}
	for i, f := range b.FollowUps {
		if i == 3 {
			break
		}
		emoji := priorityEmoji[f.Priority]
		if emoji == "" {
			emoji = "•"
		}
		fmt.Fprintf(&sb, "%s %s\n", emoji, f.Action)
	}

	sb.WriteString("\n🤝 STALE RELATIONSHIPS\n")
	if len(b.Stale) == 0 {
		sb.WriteString("✅ All relationships active\n")
	} else {
		sb.WriteString("Consider re-engaging:\n")
	}
	for i, s := range b.Stale {
		if i == 5 {
			break
		}
		last := "never"
		if len(s.LastContact) >= 10 {
			last = s.LastContact[:10]
		}
		name := s.Name
		if name == "" {
			name = s.Email
		}
		fmt.Fprintf(&sb, "• %s — %s (last: %s)\n", name, s.Company, last)
	}

	sb.WriteString("\n" + strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&sb, "Urgent mail: %d | Job apps: %d | Follow-ups: %d | Stale leads: %d\n",
		len(b.UrgentMail), total, len(b.FollowUps), len(b.Stale))
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package crm

import (
	"database/sql"
	"time"

	"github.com/openclaw/rolodex/internal/config"
)

// Address is one side of an envelope.
type Address struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

// Envelope is the raw mailbox record the engine ingests. Fetching
// envelopes is the mailbox adapters' job; the engine never touches the
// network.
type Envelope struct {
	From    Address `json:"from"`
	To      Address `json:"to"`
	Subject string  `json:"subject"`
	Date    string  `json:"date"`
	Source  string  `json:"source,omitempty"`
}

// IngestStats aggregates one ingestion run. Per-record failures are
// counted in Skipped rather than failing the batch.
type IngestStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Logged  int `json:"interactions_logged"`
	Skipped int `json:"skipped"`
}

// ContactResult is one ranked row returned by queries.
type ContactResult struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company,omitempty"`
	Role         string `json:"role"`
	Interactions int    `json:"interaction_count"`
	LastContact  string `json:"last_contact_date,omitempty"`
	Health       int    `json:"health_score"`
	Tier         string `json:"tier"`
}

// SummaryReport is the fixed aggregate report.
type SummaryReport struct {
	TotalContacts     int             `json:"total_contacts"`
	Recruiters        int             `json:"recruiters"`
	TotalInteractions int             `json:"total_interactions"`
	PendingFollowUps  int             `json:"pending_follow_ups"`
	JobPipeline       int             `json:"job_pipeline"`
	TopContacts       []ContactResult `json:"top_contacts"`
}

// Engine is the contact relationship engine. It owns no resources: the
// database handle comes from the caller and the keyword tables come from
// config.
type Engine struct {
	db    *sql.DB
	rules config.Rules
	owner map[string]bool
	now   func() time.Time
}

// NewEngine builds an engine over an open database handle.
func NewEngine(database *sql.DB, rules config.Rules, ownerEmails []string) *Engine {
	owner := make(map[string]bool, len(ownerEmails))
	for _, e := range ownerEmails {
		e = normalizeAddr(e)
		if e != "" {
			owner[e] = true
		}
	}
	return &Engine{
		db:    database,
		rules: rules.WithDefaults(),
		owner: owner,
		now:   time.Now,
	}
}

// DB returns the underlying handle for packages that share the same
// database (pipeline, costs, briefing).
func (e *Engine) DB() *sql.DB {
	return e.db
}

package crm

import (
	"database/sql"
	"fmt"
)

const (
	staleDays   = 90
	staleLimit  = 15
	healthLimit = 20
)

// contactSelect is the shared shape of every ranked query: contacts
// joined with their aggregated interaction count and most recent date.
const contactSelect = `
	SELECT c.name, c.email, c.company, c.role,
	       COUNT(i.id) AS cnt, MAX(i.date) AS last
	FROM contacts c
	LEFT JOIN interactions i ON c.id = i.contact_id
`

// Query classifies the free-text query and returns the corresponding
// ranked contact list. An empty query falls through to the search branch
// with an empty pattern, which lists the most-contacted.
func (e *Engine) Query(text string) ([]ContactResult, error) {
	switch ParseIntent(text) {
	case IntentStale:
		return e.Stale(staleLimit)
	case IntentRecruiter:
		return e.Recruiters()
	case IntentHealth:
		return e.TopByHealth(healthLimit)
	default:
		return e.Search(text)
	}
}

// Stale returns non-noisy contacts whose last interaction is more than
// 90 days old or missing, oldest (or never-contacted) first.
func (e *Engine) Stale(limit int) ([]ContactResult, error) {
	cutoff := e.now().AddDate(0, 0, -staleDays).UTC().Format(dateStore)
	rows, err := e.db.Query(contactSelect+`
		WHERE c.is_noisy = 0
		GROUP BY c.id
		HAVING MAX(i.date) < ? OR MAX(i.date) IS NULL
		ORDER BY MAX(i.date) ASC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale contacts: %w", err)
	}
	return e.scanResults(rows)
}

// Recruiters returns recruiter contacts, most recently touched first.
func (e *Engine) Recruiters() ([]ContactResult, error) {
	rows, err := e.db.Query(contactSelect+`
		WHERE c.role = 'recruiter' AND c.is_noisy = 0
		GROUP BY c.id
		ORDER BY MAX(i.date) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query recruiters: %w", err)
	}
	return e.scanResults(rows)
}

// TopByHealth returns the most active relationships: interaction count
// first, recency as tie-break.
func (e *Engine) TopByHealth(limit int) ([]ContactResult, error) {
	rows, err := e.db.Query(contactSelect+`
		WHERE c.is_noisy = 0
		GROUP BY c.id
		ORDER BY cnt DESC, MAX(i.date) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top contacts: %w", err)
	}
	return e.scanResults(rows)
}

// Search does a case-insensitive substring match over name, company and
// email, ranked by interaction count.
func (e *Engine) Search(text string) ([]ContactResult, error) {
	pattern := "%" + text + "%"
	rows, err := e.db.Query(contactSelect+`
		WHERE c.is_noisy = 0
		  AND (c.name LIKE ? OR c.company LIKE ? OR c.email LIKE ?)
		GROUP BY c.id
		ORDER BY cnt DESC
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return e.scanResults(rows)
}

func (e *Engine) scanResults(rows *sql.Rows) ([]ContactResult, error) {
	defer rows.Close()

	now := e.now()
	var results []ContactResult
	for rows.Next() {
		var (
			r                   ContactResult
			name, company, last sql.NullString
		)
		if err := rows.Scan(&name, &r.Email, &company, &r.Role, &r.Interactions, &last); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		r.Name = name.String
		r.Company = company.String
		r.LastContact = last.String
		r.Health = HealthScoreAt(now, r.LastContact, r.Interactions)
		r.Tier = Tier(r.Health)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Summary returns the fixed aggregate report: table counts plus the top
// contacts by interaction count.
func (e *Engine) Summary() (*SummaryReport, error) {
	var s SummaryReport

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM contacts WHERE is_noisy = 0", &s.TotalContacts},
		{"SELECT COUNT(*) FROM contacts WHERE role = 'recruiter' AND is_noisy = 0", &s.Recruiters},
		{"SELECT COUNT(*) FROM interactions", &s.TotalInteractions},
		{"SELECT COUNT(*) FROM follow_ups WHERE status = 'pending'", &s.PendingFollowUps},
		{"SELECT COUNT(*) FROM job_pipeline", &s.JobPipeline},
	}
	for _, c := range counts {
		if err := e.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("summary count: %w", err)
		}
	}

	top, err := e.TopByHealth(10)
	if err != nil {
		return nil, err
	}
	s.TopContacts = top
	return &s, nil
}

// Package pipeline tracks job applications and follow-up reminders.
// These rows carry no computed logic; the crm engine and briefing only
// read them.
package pipeline

import (
	"database/sql"
	"fmt"
	"strings"
)

// Statuses are the allowed job application states, in pipeline order.
var Statuses = []string{
	"discovered", "applied", "screening", "interview", "offer", "rejected", "withdrawn",
}

// Entry is one job application.
type Entry struct {
	ID          int64  `json:"id"`
	Company     string `json:"company"`
	Role        string `json:"role,omitempty"`
	Status      string `json:"status"`
	AppliedDate string `json:"applied_date,omitempty"`
	URL         string `json:"url,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Add inserts a job application and returns its id.
func Add(db *sql.DB, company, role, status, appliedDate, url, notes string) (int64, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return 0, fmt.Errorf("company is required")
	}
	if status == "" {
		status = "discovered"
	}
	if !validStatus(status) {
		return 0, fmt.Errorf("invalid status %q (allowed: %s)", status, strings.Join(Statuses, ", "))
	}

	res, err := db.Exec(`
		INSERT INTO job_pipeline (company, role, status, applied_date, url, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, company, role, status, appliedDate, url, notes)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("job id: %w", err)
	}
	return id, nil
}

// SetStatus moves an application to a new state.
func SetStatus(db *sql.DB, id int64, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("invalid status %q (allowed: %s)", status, strings.Join(Statuses, ", "))
	}
	res, err := db.Exec(`
		UPDATE job_pipeline SET status = ?, updated_at = datetime('now') WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("job %d not found", id)
	}
	return nil
}

// List returns applications, most recently applied first.
func List(db *sql.DB, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, company, role, status, applied_date, url, notes
		FROM job_pipeline
		ORDER BY applied_date DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                         Entry
			role, applied, url, notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Company, &role, &e.Status, &applied, &url, &notes); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		e.Role = role.String
		e.AppliedDate = applied.String
		e.URL = url.String
		e.Notes = notes.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// StatusCounts returns the number of applications per state.
func StatusCounts(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT status, COUNT(*) FROM job_pipeline GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

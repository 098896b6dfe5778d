package pipeline

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Priorities are the allowed follow-up priorities.
var Priorities = []string{"urgent", "high", "medium", "low"}

// FollowUp is one reminder, optionally tied to a contact or a job.
type FollowUp struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	DueDate  string `json:"due_date,omitempty"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	// Joined display fields, empty when unlinked.
	ContactName string `json:"contact,omitempty"`
	JobCompany  string `json:"job,omitempty"`
}

// AddFollowUp creates a pending follow-up and returns its id. Pass zero
// for contactID/jobID to leave the link unset.
func AddFollowUp(db *sql.DB, action, dueDate, priority string, contactID, jobID int64) (string, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return "", fmt.Errorf("action is required")
	}
	if priority == "" {
		priority = "medium"
	}
	valid := false
	for _, p := range Priorities {
		if p == priority {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("invalid priority %q (allowed: %s)", priority, strings.Join(Priorities, ", "))
	}

	id := uuid.New().String()
	var contact, job interface{}
	if contactID > 0 {
		contact = contactID
	}
	if jobID > 0 {
		job = jobID
	}

	_, err := db.Exec(`
		INSERT INTO follow_ups (id, contact_id, job_id, action, due_date, priority, status)
		VALUES (?, ?, ?, ?, ?, ?, 'pending')
	`, id, contact, job, action, dueDate, priority)
	if err != nil {
		return "", fmt.Errorf("insert follow-up: %w", err)
	}
	return id, nil
}

// PendingFollowUps returns pending reminders, soonest due first, with
// contact and job display names joined in.
func PendingFollowUps(db *sql.DB, limit int) ([]FollowUp, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT f.id, f.action, f.due_date, f.priority, f.status, c.name, j.company
		FROM follow_ups f
		LEFT JOIN contacts c ON f.contact_id = c.id
		LEFT JOIN job_pipeline j ON f.job_id = j.id
		WHERE f.status = 'pending'
		ORDER BY f.due_date ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query follow-ups: %w", err)
	}
	defer rows.Close()

	var followUps []FollowUp
	for rows.Next() {
		var (
			f                 FollowUp
			due, contact, job sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Action, &due, &f.Priority, &f.Status, &contact, &job); err != nil {
			return nil, fmt.Errorf("scan follow-up: %w", err)
		}
		f.DueDate = due.String
		f.ContactName = contact.String
		f.JobCompany = job.String
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

// CompleteFollowUp marks a follow-up done.
func CompleteFollowUp(db *sql.DB, id string) error {
	res, err := db.Exec(`
		UPDATE follow_ups
		SET status = 'done', completed_at = datetime('now')
		WHERE id = ? AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pending follow-up %s not found", id)
	}
	return nil
}

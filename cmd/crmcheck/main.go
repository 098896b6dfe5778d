// crmcheck verifies the integrity of a rolodex database: orphan
// interactions, duplicate interaction triples, contacts without an
// email, and stale last_contact_date denormalization. It uses the cgo
// sqlite driver so the check is independent of the driver the main
// binary writes with.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func defaultDBPath() string {
	if dir := os.Getenv("ROLODEX_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "rolodex.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "rolodex.db"
	}
	return filepath.Join(home, ".local", "share", "rolodex", "rolodex.db")
}

func main() {
	dbPath := flag.String("db", defaultDBPath(), "Path to the rolodex database")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Database not found: %s\n", *dbPath)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", *dbPath+"?mode=ro")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Checking %s\n\n", *dbPath)

	problems := 0
	problems += checkCount(db, "orphan interactions",
		`SELECT COUNT(*) FROM interactions i
		 LEFT JOIN contacts c ON c.id = i.contact_id
		 WHERE c.id IS NULL`)
	problems += checkCount(db, "duplicate interactions (contact, subject, date)",
		`SELECT COUNT(*) FROM (
		   SELECT contact_id, subject, date, COUNT(*) AS n
		   FROM interactions
		   GROUP BY contact_id, subject, date
		   HAVING n > 1
		 )`)
	problems += checkCount(db, "contacts with empty email",
		`SELECT COUNT(*) FROM contacts WHERE email IS NULL OR TRIM(email) = ''`)
	problems += checkCount(db, "contacts whose last_contact_date lags their interactions",
		`SELECT COUNT(*) FROM contacts c
		 JOIN (SELECT contact_id, MAX(date) AS last FROM interactions GROUP BY contact_id) i
		   ON i.contact_id = c.id
		 WHERE c.last_contact_date IS NULL OR c.last_contact_date < i.last`)
	problems += checkCount(db, "interactions logged against noisy contacts",
		`SELECT COUNT(*) FROM interactions i
		 JOIN contacts c ON c.id = i.contact_id
		 WHERE c.is_noisy = 1`)
	problems += checkCount(db, "follow-ups marked done without completed_at",
		`SELECT COUNT(*) FROM follow_ups WHERE status = 'done' AND completed_at IS NULL`)

	var contacts, interactions int
	db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&contacts)
	db.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&interactions)
	fmt.Printf("\n%d contacts, %d interactions\n", contacts, interactions)

	if problems > 0 {
		fmt.Printf("\n✗ %d check(s) failed\n", problems)
		os.Exit(1)
	}
	fmt.Println("\n✓ All checks passed")
}

// checkCount runs a query expected to return 0 and reports the result.
// Returns 1 if the check failed, 0 if it passed.
func checkCount(db *sql.DB, name, query string) int {
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		fmt.Printf("✗ %s: query failed: %v\n", name, err)
		return 1
	}
	if n != 0 {
		fmt.Printf("✗ %s: %d found\n", name, n)
		return 1
	}
	fmt.Printf("✓ %s\n", name)
	return 0
}

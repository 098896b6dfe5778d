package db

import (
	"path/filepath"
	"testing"
)

func TestOpenPathAndSchema(t *testing.T) {
	database, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer database.Close()

	if err := ApplySchema(database); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}
	// Schema uses IF NOT EXISTS throughout; re-applying must be safe.
	if err := ApplySchema(database); err != nil {
		t.Fatalf("ApplySchema is not idempotent: %v", err)
	}

	for _, table := range []string{"contacts", "interactions", "job_pipeline", "follow_ups", "model_usage"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer database.Close()
	if err := ApplySchema(database); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}

	_, err = database.Exec(`
		INSERT INTO interactions (contact_id, date) VALUES (999, '2026-01-01 00:00:00')
	`)
	if err == nil {
		t.Fatal("insert with missing contact must violate the foreign key")
	}
}

func TestInteractionDedupIndex(t *testing.T) {
	database, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer database.Close()
	if err := ApplySchema(database); err != nil {
		t.Fatalf("ApplySchema failed: %v", err)
	}

	if _, err := database.Exec(`INSERT INTO contacts (email) VALUES ('ada@acme.com')`); err != nil {
		t.Fatalf("insert contact: %v", err)
	}
	row := `INSERT INTO interactions (contact_id, subject, date) VALUES (1, 'hi', '2026-01-01 00:00:00')`
	if _, err := database.Exec(row); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := database.Exec(row); err == nil {
		t.Fatal("duplicate (contact, subject, date) must be rejected by the index")
	}
	// The ingest path relies on ON CONFLICT DO NOTHING to swallow it.
	if _, err := database.Exec(row + ` ON CONFLICT(contact_id, subject, date) DO NOTHING`); err != nil {
		t.Fatalf("ON CONFLICT DO NOTHING should not error: %v", err)
	}
}

package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mmrzaf/costgen/internal/domain"
)

func TestSQLiteSink_CreatesTableAndInserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	s := NewSQLiteSink(path, "pod_usage")
	header := []string{"interval_start", "lineItem/UsageAmount", "pod"}
	if err := s.Open(header); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteBatch([]domain.Row{
		{"2021-01-01 00:00:00", "1.5", "pod-a"},
		{"2021-01-01 01:00:00", nil, "pod-b"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteBatch([]domain.Row{{"2021-01-01 02:00:00", 3, "pod-c"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pod_usage`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}

	var amount sql.NullString
	if err := db.QueryRow(`SELECT "lineItem/UsageAmount" FROM pod_usage WHERE pod = 'pod-b'`).Scan(&amount); err != nil {
		t.Fatal(err)
	}
	if amount.Valid {
		t.Fatalf("expected NULL for nil cell, got %q", amount.String)
	}

	// reopening appends to the existing table
	s = NewSQLiteSink(path, "pod_usage")
	if err := s.Open(header); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteBatch([]domain.Row{{"2021-01-01 03:00:00", "2", "pod-d"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM pod_usage`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("expected 4 rows after append, got %d", count)
	}
}

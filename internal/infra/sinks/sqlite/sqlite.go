package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/infra/sinks"
)

// SQLiteSink appends rows to a TEXT-typed table, creating it on Open.
type SQLiteSink struct {
	path    string
	table   string
	db      *sql.DB
	columns []string
}

func NewSQLiteSink(path, table string) *SQLiteSink {
	return &SQLiteSink{path: path, table: table}
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (s *SQLiteSink) Open(header []string) error {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	s.db = db

	s.columns = make([]string, len(header))
	defs := make([]string, len(header))
	for i, name := range header {
		s.columns[i] = quote(name)
		defs[i] = s.columns[i] + " TEXT"
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(s.table), strings.Join(defs, ", "))
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLiteSink) WriteBatch(rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := make([]string, len(s.columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(s.table), strings.Join(s.columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(sinks.Args(row)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

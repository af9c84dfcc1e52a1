package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/infra/sinks"
)

// PostgresSink loads each batch with COPY into a TEXT-typed table.
type PostgresSink struct {
	dsn    string
	schema string
	table  string
	db     *sql.DB
	header []string
}

func NewPostgresSink(dsn, schema, table string) *PostgresSink {
	if schema == "" {
		schema = "public"
	}
	return &PostgresSink{
		dsn:    dsn,
		schema: schema,
		table:  table,
	}
}

func (s *PostgresSink) qualifiedTable() string {
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(s.table)
}

func (s *PostgresSink) Open(header []string) error {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	s.db = db
	s.header = header

	defs := make([]string, len(header))
	for i, name := range header {
		defs[i] = pq.QuoteIdentifier(name) + " TEXT"
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.qualifiedTable(), strings.Join(defs, ", "))
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("create table %s.%s: %w", s.schema, s.table, err)
	}
	return nil
}

func (s *PostgresSink) WriteBatch(rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyInSchema(s.schema, s.table, s.header...))
	if err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := stmt.Exec(sinks.Args(row)...); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresSink) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

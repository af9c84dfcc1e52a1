package domain

import (
	"encoding/json"
	"time"
)

// Schema is a compiled column description handed to a record generator.
type Schema struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Provider    string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Filename    string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Roles       *Roles   `json:"roles,omitempty" yaml:"roles,omitempty"`
	Columns     []Column `json:"columns" yaml:"columns"`
}

// Header returns the column names in schema order.
func (s *Schema) Header() []string {
	header := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = col.Name
	}
	return header
}

// Column returns the first column with the given name.
func (s *Schema) Column(name string) (*Column, bool) {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i], true
		}
	}
	return nil, false
}

// Clone returns a copy whose column slice can be modified independently.
func (s *Schema) Clone() *Schema {
	cp := *s
	cp.Columns = make([]Column, len(s.Columns))
	copy(cp.Columns, s.Columns)
	if s.Roles != nil {
		roles := *s.Roles
		cp.Roles = &roles
	}
	return &cp
}

type Column struct {
	Name    string        `json:"name" yaml:"name"`
	Type    string        `json:"type" yaml:"type"`
	Default interface{}   `json:"default,omitempty" yaml:"default,omitempty"`
	Format  string        `json:"format,omitempty" yaml:"format,omitempty"`
	Seed    []interface{} `json:"seed,omitempty" yaml:"seed,omitempty"`
}

const (
	ColumnTypeString   = "string"
	ColumnTypeDatetime = "datetime"
	ColumnTypeTag      = "tag"
	ColumnTypeCalc     = "calc"
	ColumnTypeUUID     = "uuid"
	ColumnTypeChoice   = "choice"
	ColumnTypeDecimal  = "decimal"
)

// Roles binds the four chronological slots to concrete column names.
type Roles struct {
	PeriodStart string `json:"period_start" yaml:"period_start"`
	PeriodEnd   string `json:"period_end" yaml:"period_end"`
	UsageStart  string `json:"usage_start" yaml:"usage_start"`
	UsageEnd    string `json:"usage_end" yaml:"usage_end"`
}

func (r Roles) Names() []string {
	return []string{r.PeriodStart, r.PeriodEnd, r.UsageStart, r.UsageEnd}
}

// Row holds one generated value per active column. Cells may be nil.
type Row []interface{}

type Run struct {
	ID          string          `json:"id" yaml:"id"`
	SchemaID    string          `json:"schema_id" yaml:"schema_id"`
	SchemaName  string          `json:"schema_name" yaml:"schema_name"`
	Provider    string          `json:"provider" yaml:"provider"`
	SinkKind    string          `json:"sink_kind" yaml:"sink_kind"`
	SinkDSN     string          `json:"sink_dsn" yaml:"sink_dsn"`
	Seed        int64           `json:"seed" yaml:"seed"`
	ConfigHash  string          `json:"config_hash" yaml:"config_hash"`
	Status      RunStatus       `json:"status" yaml:"status"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	RowsGenerated   int64   `json:"rows_generated" yaml:"rows_generated"`
	Batches         int     `json:"batches" yaml:"batches"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
	StopReason      string  `json:"stop_reason" yaml:"stop_reason"`
}

const (
	StopReasonRowLimit  = "row_limit"
	StopReasonPeriodEnd = "period_end"
	StopReasonCanceled  = "canceled"
)

type RunRequest struct {
	SchemaID       string
	SchemaPath     string
	Provider       string
	Start          *time.Time
	End            *time.Time
	Rows           int64
	UntilPeriodEnd bool
	Seed           *int64
	Sink           SinkConfig
}

type SinkConfig struct {
	Kind   string `json:"kind" yaml:"kind"`
	DSN    string `json:"dsn" yaml:"dsn"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

const (
	SinkKindCSV      = "csv"
	SinkKindSQLite   = "sqlite"
	SinkKindPostgres = "postgres"
)

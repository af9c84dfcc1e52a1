package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmrzaf/costgen/internal/domain"
)

// SchemaError reports a malformed column descriptor or schema. It indicates
// a misconfigured caller and is never recovered by the record engine.
type SchemaError struct {
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	return e.Msg
}

func schemaErrorf(column, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Column: column, Msg: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ValidateColumn checks the fields every generation strategy relies on.
func ValidateColumn(col domain.Column) error {
	if strings.TrimSpace(col.Name) == "" {
		return schemaErrorf("", "column name missing: %+v", col)
	}
	if strings.TrimSpace(col.Type) == "" {
		return schemaErrorf(col.Name, "column type missing for column '%s'", col.Name)
	}
	return nil
}

// ValidateSchema checks a whole schema before it is handed to a generator.
func ValidateSchema(schema *domain.Schema) error {
	if schema == nil {
		return schemaErrorf("", "schema is nil")
	}
	if strings.TrimSpace(schema.Name) == "" {
		return schemaErrorf("", "schema name is required")
	}
	if len(schema.Columns) == 0 {
		return schemaErrorf("", "schema '%s' must have at least one column", schema.Name)
	}

	seen := make(map[string]bool, len(schema.Columns))
	for i, col := range schema.Columns {
		if err := ValidateColumn(col); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		if seen[col.Name] {
			return schemaErrorf(col.Name, "duplicate column name: %s", col.Name)
		}
		seen[col.Name] = true
	}

	if schema.Roles != nil {
		if err := ValidateRoles(schema, *schema.Roles); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRoles checks that each role names a distinct datetime column of schema.
func ValidateRoles(schema *domain.Schema, roles domain.Roles) error {
	labels := []string{"period_start", "period_end", "usage_start", "usage_end"}
	used := make(map[string]string, 4)
	for i, name := range roles.Names() {
		if name == "" {
			return schemaErrorf("", "role %s is not bound to a column", labels[i])
		}
		if other, dup := used[name]; dup {
			return schemaErrorf(name, "column '%s' bound to both %s and %s", name, other, labels[i])
		}
		used[name] = labels[i]

		col, ok := schema.Column(name)
		if !ok {
			return schemaErrorf(name, "role %s references unknown column '%s'", labels[i], name)
		}
		if col.Type != domain.ColumnTypeDatetime {
			return schemaErrorf(name, "role %s column '%s' must have type datetime, got %s", labels[i], name, col.Type)
		}
	}
	return nil
}

// identifier validation: allow simple SQL identifiers only (prevents injection via table names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

func ValidateSinkConfig(cfg domain.SinkConfig) error {
	switch cfg.Kind {
	case domain.SinkKindCSV:
		if cfg.DSN == "" {
			return errors.New("csv sink requires an output path")
		}
	case domain.SinkKindSQLite, domain.SinkKindPostgres:
		if cfg.DSN == "" {
			return fmt.Errorf("%s sink requires a dsn", cfg.Kind)
		}
		if !IsValidIdentifier(cfg.Table) {
			return fmt.Errorf("invalid sink table identifier: %s", cfg.Table)
		}
		if cfg.Schema != "" {
			if cfg.Kind != domain.SinkKindPostgres {
				return fmt.Errorf("%s sinks must not set schema", cfg.Kind)
			}
			if !IsValidIdentifier(cfg.Schema) {
				return fmt.Errorf("invalid sink schema identifier: %s", cfg.Schema)
			}
		}
	case "":
		return errors.New("sink kind is required")
	default:
		return fmt.Errorf("unsupported sink kind: %s", cfg.Kind)
	}
	return nil
}

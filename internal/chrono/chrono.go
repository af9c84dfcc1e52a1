// Package chrono generates report-period and usage-interval datetimes.
//
// Four role columns are tracked. Period columns always carry the fixed
// report period bounds; usage columns advance one hour per row so that
// consecutive rows tile the period without gaps. Every emitted value stays
// within [start, end]; leaving that range is an invariant violation that
// halts the record generator.
package chrono

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/generators"
	"github.com/mmrzaf/costgen/internal/registry"
	"github.com/mmrzaf/costgen/internal/timeutil"
	"github.com/mmrzaf/costgen/internal/validation"
)

var (
	ErrOutOfBounds   = errors.New("date outside report period")
	ErrUnknownColumn = errors.New("unknown datetime column")
)

// DefaultFormat renders role columns that declare no format.
const DefaultFormat = "%Y-%m-%d %H:%M:%S"

// Step is the width of one usage interval.
const Step = timeutil.OneHour

type Generator struct {
	roles domain.Roles

	start time.Time
	end   time.Time

	periodStartFormat string
	periodEndFormat   string
	usageStartFormat  string
	usageEndFormat    string

	lastUsageStart *time.Time
	lastUsageEnd   *time.Time
}

// New reads the report period from the defaults of the period role columns
// and each role's output format. The bounds are not compared here; the first
// bounds check reports an inverted period.
func New(schema *domain.Schema, roles domain.Roles) (*Generator, error) {
	if err := validation.ValidateRoles(schema, roles); err != nil {
		return nil, err
	}

	periodStart, _ := schema.Column(roles.PeriodStart)
	periodEnd, _ := schema.Column(roles.PeriodEnd)
	usageStart, _ := schema.Column(roles.UsageStart)
	usageEnd, _ := schema.Column(roles.UsageEnd)

	start, err := parseBound(*periodStart)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(*periodEnd)
	if err != nil {
		return nil, err
	}

	return &Generator{
		roles:             roles,
		start:             start,
		end:               end,
		periodStartFormat: formatOrDefault(periodStart.Format),
		periodEndFormat:   formatOrDefault(periodEnd.Format),
		usageStartFormat:  formatOrDefault(usageStart.Format),
		usageEndFormat:    formatOrDefault(usageEnd.Format),
	}, nil
}

func (g *Generator) Start() time.Time { return g.start }
func (g *Generator) End() time.Time   { return g.end }

func (g *Generator) Roles() domain.Roles { return g.roles }

// Registry returns a copy of base whose datetime strategy is g.
func (g *Generator) Registry(base *registry.GeneratorRegistry) *registry.GeneratorRegistry {
	r := base.Clone()
	r.Register(domain.ColumnTypeDatetime, g)
	return r
}

func (g *Generator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	switch col.Name {
	case g.roles.PeriodStart:
		if err := g.checkDate(col.Name, g.start); err != nil {
			return nil, err
		}
		return g.render(col.Name, g.periodStartFormat, g.start)

	case g.roles.PeriodEnd:
		if err := g.checkDate(col.Name, g.end); err != nil {
			return nil, err
		}
		return g.render(col.Name, g.periodEndFormat, g.end)

	case g.roles.UsageStart:
		next := g.start
		if g.lastUsageStart != nil {
			next = g.lastUsageStart.Add(Step)
		}
		if err := g.checkDate(col.Name, next); err != nil {
			return nil, err
		}
		g.lastUsageStart = &next
		return g.render(col.Name, g.usageStartFormat, next)

	case g.roles.UsageEnd:
		next := g.start.Add(Step)
		if g.lastUsageEnd != nil {
			next = g.lastUsageEnd.Add(Step)
		}
		if err := g.checkDate(col.Name, next); err != nil {
			return nil, err
		}
		g.lastUsageEnd = &next
		return g.render(col.Name, g.usageEndFormat, next)
	}

	return nil, generators.InvariantError(col.Name, ErrUnknownColumn,
		"unknown datetime column '%s', unable to generate a value", col.Name)
}

func (g *Generator) checkDate(column string, v time.Time) error {
	if v.Before(g.start) || v.After(g.end) {
		return generators.InvariantError(column, ErrOutOfBounds,
			"date value %s is outside report period [%s, %s]",
			v.Format(time.RFC3339), g.start.Format(time.RFC3339), g.end.Format(time.RFC3339))
	}
	return nil
}

func (g *Generator) render(column, format string, v time.Time) (interface{}, error) {
	out, err := generators.FormatTime(format, v)
	if err != nil {
		return nil, generators.InvariantError(column, err, "invalid datetime format %q", format)
	}
	return out, nil
}

func parseBound(col domain.Column) (time.Time, error) {
	switch v := col.Default.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := timeutil.ParseDate(v, time.Now().UTC())
		if err != nil {
			return time.Time{}, &validation.SchemaError{Column: col.Name, Msg: fmt.Sprintf("column '%s': invalid report period default: %v", col.Name, err)}
		}
		return t, nil
	case nil:
		return time.Time{}, &validation.SchemaError{Column: col.Name, Msg: fmt.Sprintf("column '%s' needs a default to bound the report period", col.Name)}
	default:
		return time.Time{}, &validation.SchemaError{Column: col.Name, Msg: fmt.Sprintf("column '%s': unsupported report period default %T", col.Name, col.Default)}
	}
}

func formatOrDefault(format string) string {
	if format == "" {
		return DefaultFormat
	}
	return format
}

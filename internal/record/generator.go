// Package record drives row production from a column schema.
//
// A Generator resolves every column of a schema through a registry of
// strategies. Rows are pulled one at a time from Lines; each pull may carry
// a replacement column list that applies to that pull only.
package record

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/generators"
	"github.com/mmrzaf/costgen/internal/logging"
	"github.com/mmrzaf/costgen/internal/registry"
	"github.com/mmrzaf/costgen/internal/validation"
)

type Generator struct {
	schema   *domain.Schema
	registry *registry.GeneratorRegistry
	rng      *rand.Rand
	logger   *logging.Logger

	// unregistered types already reported at info level
	reported map[string]bool
}

type Option func(*Generator)

func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithLogger(logger *logging.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

func New(schema *domain.Schema, reg *registry.GeneratorRegistry, opts ...Option) *Generator {
	g := &Generator{
		schema:   schema,
		registry: reg,
		reported: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.logger == nil {
		g.logger = logging.Nop()
	}
	g.logger = g.logger.WithComponent("record")
	g.logger.Infow("generator.initialized", map[string]any{
		"schema":   schema.Name,
		"filename": schema.Filename,
		"columns":  len(schema.Columns),
	})
	return g
}

// Header returns the column names of the original schema. Overrides passed
// to Lines.Next never change it.
func (g *Generator) Header() []string {
	return g.schema.Header()
}

func (g *Generator) Schema() *domain.Schema {
	return g.schema
}

// Lines starts a new pull sequence. The sequence is unbounded; callers stop
// pulling when they have enough rows.
func (g *Generator) Lines() *Lines {
	return &Lines{gen: g}
}

// Lines is a pull iterator over generated rows.
type Lines struct {
	gen    *Generator
	pulled int64
	err    error
}

// Next produces one row. When override is non-empty it replaces the schema
// columns for this row only.
//
// Recoverable generation errors degrade the cell to the column default.
// Schema errors and invariant violations are returned; after an invariant
// violation the sequence is halted and every later call returns the same
// error.
func (l *Lines) Next(override []domain.Column) (domain.Row, error) {
	if l.err != nil {
		return nil, l.err
	}

	columns := l.gen.schema.Columns
	if len(override) > 0 {
		columns = override
	}

	row := make(domain.Row, 0, len(columns))
	for _, col := range columns {
		if err := validation.ValidateColumn(col); err != nil {
			return nil, fmt.Errorf("row %d: %w", l.pulled+1, err)
		}

		val, err := l.gen.value(col)
		if err != nil {
			if ge, ok := generators.AsGeneratorError(err); ok && ge.Invariant {
				l.err = fmt.Errorf("row %d: %w", l.pulled+1, err)
				l.gen.logger.Errorw("generator.halted", map[string]any{"row": l.pulled + 1, "column": col.Name, "error": err})
				return nil, l.err
			}
			return nil, fmt.Errorf("row %d, column '%s': %w", l.pulled+1, col.Name, err)
		}
		row = append(row, val)
	}

	l.pulled++
	if l.gen.logger.Enabled(logging.LevelDebug) {
		l.gen.logger.Debugw("generator.line", map[string]any{"row": l.pulled, "values": row})
	}
	return row, nil
}

// Pulled reports how many rows were produced so far.
func (l *Lines) Pulled() int64 {
	return l.pulled
}

// Err returns the error that halted the sequence, if any.
func (l *Lines) Err() error {
	return l.err
}

func (g *Generator) value(col domain.Column) (interface{}, error) {
	gen, err := g.registry.Get(col.Type)
	if err != nil {
		var nr *registry.ErrNotRegistered
		if !errors.As(err, &nr) {
			return nil, err
		}
		fields := map[string]any{"column": col.Name, "type": col.Type}
		if !g.reported[col.Type] {
			g.reported[col.Type] = true
			g.logger.Infow("generator.type_unregistered", fields)
		} else {
			g.logger.Debugw("generator.type_unregistered", fields)
		}
		return col.Default, nil
	}

	val, err := gen.Generate(g.rng, col)
	if err == nil {
		return val, nil
	}
	if ge, ok := generators.AsGeneratorError(err); ok && !ge.Invariant {
		g.logger.Infow("generator.default_used", map[string]any{"column": col.Name, "reason": ge.Error()})
		return col.Default, nil
	}
	return nil, err
}

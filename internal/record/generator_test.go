package record

import (
	"bytes"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/generators"
	"github.com/mmrzaf/costgen/internal/logging"
	"github.com/mmrzaf/costgen/internal/registry"
	"github.com/mmrzaf/costgen/internal/validation"
)

func testSchema() *domain.Schema {
	return &domain.Schema{
		Name:     "test",
		Filename: "test.csv",
		Columns: []domain.Column{
			{Name: "account", Type: "string", Format: "ACME-{}"},
			{Name: "qty", Type: "calc"},
			{Name: "legacy", Type: "foo", Default: "bar"},
		},
	}
}

func TestHeaderPreservesOrder(t *testing.T) {
	s := testSchema()
	g := New(s, registry.DefaultGeneratorRegistry(), WithSeed(1))
	header := g.Header()
	if len(header) != len(s.Columns) {
		t.Fatalf("expected %d names, got %v", len(s.Columns), header)
	}
	for i, name := range []string{"account", "qty", "legacy"} {
		if header[i] != name {
			t.Fatalf("header[%d]: expected %s, got %s", i, name, header[i])
		}
	}
}

func TestLinesProducesShapeStableRows(t *testing.T) {
	g := New(testSchema(), registry.DefaultGeneratorRegistry(), WithSeed(1))
	lines := g.Lines()
	re := regexp.MustCompile(`^ACME-\S+$`)

	for i := 0; i < 25; i++ {
		row, err := lines.Next(nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(row) != 3 {
			t.Fatalf("expected 3 cells, got %d", len(row))
		}
		if !re.MatchString(row[0].(string)) {
			t.Fatalf("unexpected account value %q", row[0])
		}
		if row[2] != "bar" {
			t.Fatalf("expected default for unregistered type, got %v", row[2])
		}
	}
	if lines.Pulled() != 25 {
		t.Fatalf("expected 25 pulls, got %d", lines.Pulled())
	}
}

func TestUnregisteredTypeLoggedOnceAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter("info", &buf)
	g := New(testSchema(), registry.DefaultGeneratorRegistry(), WithSeed(1), WithLogger(logger))
	lines := g.Lines()
	for i := 0; i < 5; i++ {
		if _, err := lines.Next(nil); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(buf.String(), "generator.type_unregistered"); n != 1 {
		t.Fatalf("expected one info record for the unregistered type, got %d:\n%s", n, buf.String())
	}
}

func TestOverrideAppliesToSinglePull(t *testing.T) {
	g := New(testSchema(), registry.DefaultGeneratorRegistry(), WithSeed(1))
	lines := g.Lines()

	override := []domain.Column{
		{Name: "only", Type: "string", Default: "x"},
	}
	row, err := lines.Next(override)
	if err != nil {
		t.Fatal(err)
	}
	if len(row) != 1 || row[0] != "x" {
		t.Fatalf("expected override row, got %v", row)
	}
	if len(g.Header()) != 3 {
		t.Fatal("override must not change the header")
	}

	row, err = lines.Next(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(row) != 3 {
		t.Fatalf("expected original columns after override, got %v", row)
	}
}

func TestMissingDefaultYieldsNilCell(t *testing.T) {
	s := &domain.Schema{Name: "s", Columns: []domain.Column{
		{Name: "note", Type: "string"},
		{Name: "fallback", Type: "unknown"},
	}}
	row, err := New(s, registry.DefaultGeneratorRegistry(), WithSeed(1)).Lines().Next(nil)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != nil || row[1] != nil {
		t.Fatalf("expected nil cells, got %v", row)
	}
}

func TestSchemaErrorPropagates(t *testing.T) {
	s := &domain.Schema{Name: "s", Columns: []domain.Column{{Name: "no_type"}}}
	_, err := New(s, registry.DefaultGeneratorRegistry(), WithSeed(1)).Lines().Next(nil)
	if !validation.IsSchemaError(err) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestInvariantErrorHaltsSequence(t *testing.T) {
	reg := registry.DefaultGeneratorRegistry()
	calls := 0
	reg.Register("ticker", generators.GeneratorFunc(func(*rand.Rand, domain.Column) (interface{}, error) {
		calls++
		if calls > 2 {
			return nil, generators.InvariantError("tick", nil, "out of range")
		}
		return calls, nil
	}))
	s := &domain.Schema{Name: "s", Columns: []domain.Column{{Name: "tick", Type: "ticker", Default: 0}}}
	lines := New(s, reg, WithSeed(1)).Lines()

	for i := 1; i <= 2; i++ {
		row, err := lines.Next(nil)
		if err != nil {
			t.Fatal(err)
		}
		if row[0] != i {
			t.Fatalf("expected %d, got %v", i, row[0])
		}
	}

	_, err := lines.Next(nil)
	ge, ok := generators.AsGeneratorError(err)
	if !ok || !ge.Invariant {
		t.Fatalf("expected invariant GeneratorError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "row 3:") {
		t.Fatalf("expected error to name the third row, got %v", err)
	}
	_, again := lines.Next(nil)
	if again != err {
		t.Fatalf("expected halted sequence to repeat its error, got %v", again)
	}
	if calls != 3 {
		t.Fatalf("halted sequence must not call strategies again, got %d calls", calls)
	}
}

func TestOtherErrorsPropagate(t *testing.T) {
	reg := registry.NewGeneratorRegistry()
	boom := errors.New("boom")
	reg.Register("broken", generators.GeneratorFunc(func(*rand.Rand, domain.Column) (interface{}, error) {
		return nil, boom
	}))
	s := &domain.Schema{Name: "s", Columns: []domain.Column{{Name: "b", Type: "broken", Default: "d"}}}
	_, err := New(s, reg, WithSeed(1)).Lines().Next(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "row 1, column 'b':") {
		t.Fatalf("expected error to name the first row, got %v", err)
	}
}

package registry

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/generators"
)

func TestDefaultGeneratorRegistry(t *testing.T) {
	r := DefaultGeneratorRegistry()
	for _, typ := range []string{"string", "datetime", "calc", "uuid", "choice", "decimal"} {
		if _, err := r.Get(typ); err != nil {
			t.Fatalf("expected %s registered: %v", typ, err)
		}
	}

	_, err := r.Get("foo")
	var nr *ErrNotRegistered
	if !errors.As(err, &nr) || nr.Type != "foo" {
		t.Fatalf("expected ErrNotRegistered for foo, got %v", err)
	}
}

func TestOCPGeneratorRegistry_Placeholders(t *testing.T) {
	r := OCPGeneratorRegistry()
	rng := rand.New(rand.NewSource(1))
	for typ, want := range map[string]string{"calc": "NotImplemented: OCP:Calc", "tag": "NotImplemented: OCP:Tag"} {
		gen, err := r.Get(typ)
		if err != nil {
			t.Fatal(err)
		}
		v, err := gen.Generate(rng, domain.Column{Name: "c", Type: typ})
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("%s: expected %q, got %v", typ, want, v)
		}
	}

	base := DefaultGeneratorRegistry()
	if _, err := base.Get("tag"); err == nil {
		t.Fatal("base registry must not know tag columns")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := DefaultGeneratorRegistry()
	cp := base.Clone()
	cp.Register("datetime", generators.GeneratorFunc(func(*rand.Rand, domain.Column) (interface{}, error) {
		return "fixed", nil
	}))

	orig, _ := base.Get("datetime")
	if _, ok := orig.(*generators.DatetimeGenerator); !ok {
		t.Fatalf("clone override leaked into base registry: %T", orig)
	}
	if len(cp.List()) != len(base.List()) {
		t.Fatalf("expected same entry count, got %v vs %v", cp.List(), base.List())
	}
}

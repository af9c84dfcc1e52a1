package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/generators"
)

// GeneratorRegistry maps a column type to the strategy producing its values.
type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[string]generators.Generator
}

func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{
		generators: make(map[string]generators.Generator),
	}
}

func (r *GeneratorRegistry) Register(name string, gen generators.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = gen
}

// ErrNotRegistered is returned by Get for unknown column types.
type ErrNotRegistered struct {
	Type string
}

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("no generator registered for column type '%s'", e.Type)
}

func (r *GeneratorRegistry) Get(name string) (generators.Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[name]
	if !ok {
		return nil, &ErrNotRegistered{Type: name}
	}
	return gen, nil
}

func (r *GeneratorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent registry with the same entries.
func (r *GeneratorRegistry) Clone() *GeneratorRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := NewGeneratorRegistry()
	for name, gen := range r.generators {
		cp.generators[name] = gen
	}
	return cp
}

func DefaultGeneratorRegistry() *GeneratorRegistry {
	r := NewGeneratorRegistry()
	r.Register(domain.ColumnTypeString, &generators.StringGenerator{})
	r.Register(domain.ColumnTypeDatetime, &generators.DatetimeGenerator{})
	r.Register(domain.ColumnTypeCalc, &generators.CalcGenerator{})
	r.Register(domain.ColumnTypeUUID, &generators.UUID4Generator{})
	r.Register(domain.ColumnTypeChoice, &generators.ChoiceGenerator{})
	r.Register(domain.ColumnTypeDecimal, &generators.DecimalGenerator{})
	return r
}

// OCPGeneratorRegistry covers OpenShift metering reports. Calculated and tag
// columns are placeholders until their provider logic exists.
func OCPGeneratorRegistry() *GeneratorRegistry {
	r := DefaultGeneratorRegistry()
	r.Register(domain.ColumnTypeCalc, generators.NotImplemented("OCP", "Calc"))
	r.Register(domain.ColumnTypeTag, generators.NotImplemented("OCP", "Tag"))
	return r
}

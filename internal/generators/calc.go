package generators

import (
	"math/rand"

	"github.com/mmrzaf/costgen/internal/domain"
)

// CalcGenerator is the base calculated value: a random digit.
type CalcGenerator struct{}

func (g *CalcGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	return rng.Intn(10), nil
}

// PlaceholderGenerator marks a column type whose provider-specific logic
// does not exist yet. It never fails.
type PlaceholderGenerator struct {
	Marker string
}

func NotImplemented(provider, columnType string) *PlaceholderGenerator {
	return &PlaceholderGenerator{Marker: "NotImplemented: " + provider + ":" + columnType}
}

func (g *PlaceholderGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	return g.Marker, nil
}

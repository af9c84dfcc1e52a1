package generators

import (
	"math/rand"

	"github.com/mmrzaf/costgen/internal/domain"
)

// ChoiceGenerator picks one of the seed values. A seed entry may be a map
// with "value" and "weight" keys; plain entries weigh 1.
type ChoiceGenerator struct{}

func (g *ChoiceGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	if len(col.Seed) == 0 {
		return ReturnDefault(col)
	}

	values := make([]interface{}, len(col.Seed))
	weights := make([]float64, len(col.Seed))
	totalWeight := 0.0
	for i, entry := range col.Seed {
		values[i], weights[i] = seedEntry(entry)
		if weights[i] < 0 {
			return nil, Errorf(col.Name, "negative weight: %v", weights[i])
		}
		totalWeight += weights[i]
	}

	if totalWeight == 0 {
		return nil, Errorf(col.Name, "total weight is zero")
	}

	r := rng.Float64() * totalWeight
	cumWeight := 0.0
	for i, w := range weights {
		cumWeight += w
		if r < cumWeight {
			return values[i], nil
		}
	}

	return values[len(values)-1], nil
}

func seedEntry(entry interface{}) (interface{}, float64) {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return entry, 1
	}
	value, hasValue := m["value"]
	if !hasValue {
		return entry, 1
	}
	w, hasWeight := m["weight"]
	if !hasWeight {
		return value, 1
	}
	return value, toFloat64(w)
}

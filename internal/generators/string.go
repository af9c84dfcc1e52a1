package generators

import (
	"fmt"
	"math/rand"
	"regexp"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/costgen/internal/domain"
)

var placeholderRe = regexp.MustCompile(`{.*?}`)

// CountPlaceholders returns the number of {}-style placeholders in format.
func CountPlaceholders(format string) int {
	return len(placeholderRe.FindAllStringIndex(format, -1))
}

// StringGenerator fills each placeholder of the column format with a filler
// word. Words come from the column seed when one is given.
type StringGenerator struct{}

func (g *StringGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	if col.Format == "" {
		return ReturnDefault(col)
	}

	words := make([]string, CountPlaceholders(col.Format))
	for i := range words {
		words[i] = fillerWord(rng, col.Seed)
	}

	i := 0
	return placeholderRe.ReplaceAllStringFunc(col.Format, func(string) string {
		w := words[i]
		i++
		return w
	}), nil
}

func fillerWord(rng *rand.Rand, seed []interface{}) string {
	if len(seed) > 0 {
		return fmt.Sprint(seed[rng.Intn(len(seed))])
	}
	return faker.Word()
}

package generators

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultDecimalPlaces = 2

// DecimalGenerator draws an amount uniformly from [seed[0], seed[1]) and
// renders it with the number of decimal places given by format.
type DecimalGenerator struct{}

func (g *DecimalGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	lo, hi := decimal.Zero, decimal.NewFromInt(100)
	if len(col.Seed) > 0 {
		if len(col.Seed) != 2 {
			return nil, Errorf(col.Name, "decimal seed must be [min, max], got %d values", len(col.Seed))
		}
		var err error
		if lo, err = decimal.NewFromString(fmt.Sprint(col.Seed[0])); err != nil {
			return nil, Errorf(col.Name, "invalid decimal min %v: %v", col.Seed[0], err)
		}
		if hi, err = decimal.NewFromString(fmt.Sprint(col.Seed[1])); err != nil {
			return nil, Errorf(col.Name, "invalid decimal max %v: %v", col.Seed[1], err)
		}
	}
	if !hi.GreaterThan(lo) {
		return nil, Errorf(col.Name, "max (%s) must be greater than min (%s)", hi, lo)
	}

	places := int32(defaultDecimalPlaces)
	if f := strings.TrimSpace(col.Format); f != "" {
		p, err := strconv.Atoi(f)
		if err != nil || p < 0 {
			return nil, Errorf(col.Name, "decimal format must be a number of places, got %q", col.Format)
		}
		places = int32(p)
	}

	amount := lo.Add(hi.Sub(lo).Mul(decimal.NewFromFloat(rng.Float64())))
	return amount.StringFixed(places), nil
}

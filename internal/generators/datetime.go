package generators

import (
	"math/rand"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
)

// maxUnixTime bounds random instants to the signed 32-bit epoch range.
const maxUnixTime = 1<<31 - 1

// DatetimeGenerator renders a random instant with the column's strftime
// format. It makes no attempt at ordering; see the chrono package for that.
type DatetimeGenerator struct{}

func (g *DatetimeGenerator) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	if col.Format == "" {
		return ReturnDefault(col)
	}
	t := time.Unix(rng.Int63n(maxUnixTime), 0).UTC()
	out, err := FormatTime(col.Format, t)
	if err != nil {
		return nil, Errorf(col.Name, "invalid datetime format %q: %v", col.Format, err)
	}
	return out, nil
}

package generators

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/mmrzaf/costgen/internal/domain"
)

// Generator produces one value for a column. Implementations receive the
// full column descriptor and the generator's RNG.
type Generator interface {
	Generate(rng *rand.Rand, col domain.Column) (interface{}, error)
}

type GeneratorFunc func(rng *rand.Rand, col domain.Column) (interface{}, error)

func (f GeneratorFunc) Generate(rng *rand.Rand, col domain.Column) (interface{}, error) {
	return f(rng, col)
}

// GeneratorError is an expected generation-time condition. The record engine
// replaces the cell with the column default unless Invariant is set.
type GeneratorError struct {
	Column    string
	Msg       string
	Invariant bool
	Err       error
}

func (e *GeneratorError) Error() string {
	if e.Column == "" {
		return e.Msg
	}
	return fmt.Sprintf("column '%s': %s", e.Column, e.Msg)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

func Errorf(column, format string, args ...interface{}) *GeneratorError {
	return &GeneratorError{Column: column, Msg: fmt.Sprintf(format, args...)}
}

// InvariantError wraps cause as a non-recoverable GeneratorError.
func InvariantError(column string, cause error, format string, args ...interface{}) *GeneratorError {
	return &GeneratorError{Column: column, Msg: fmt.Sprintf(format, args...), Invariant: true, Err: cause}
}

// AsGeneratorError unwraps err into a *GeneratorError when it is one.
func AsGeneratorError(err error) (*GeneratorError, bool) {
	var ge *GeneratorError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// ReturnDefault yields the column default, failing when none is configured.
func ReturnDefault(col domain.Column) (interface{}, error) {
	if hasDefault(col) {
		return col.Default, nil
	}
	return nil, Errorf(col.Name, "no default value defined for column '%s'", col.Name)
}

func hasDefault(col domain.Column) bool {
	if col.Default == nil {
		return false
	}
	if s, ok := col.Default.(string); ok && s == "" {
		return false
	}
	return true
}

// FormatTime renders t with a strftime pattern such as "%Y-%m-%dT%H:%M:%S".
func FormatTime(pattern string, t time.Time) (string, error) {
	return strftime.Format(pattern, t)
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return 0.0
	}
}

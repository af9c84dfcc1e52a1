// Package sinks holds helpers shared by the row sinks.
package sinks

import (
	"fmt"
	"time"
)

// Text renders a generated cell for a text column. ok is false for nil cells,
// which sinks store as NULL or an empty field.
func Text(v interface{}) (s string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case time.Time:
		return t.UTC().Format(time.RFC3339), true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// Args converts a row into driver arguments, mapping nil cells to NULL.
func Args(row []interface{}) []interface{} {
	args := make([]interface{}, len(row))
	for i, v := range row {
		if s, ok := Text(v); ok {
			args[i] = s
		}
	}
	return args
}

package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
)

// HashSchema returns a stable digest of the parts of a schema that affect
// generated rows.
func HashSchema(schema *domain.Schema) (string, error) {
	canonical := canonicalizeSchema(schema)
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeSchema(schema *domain.Schema) map[string]interface{} {
	columns := make([]map[string]interface{}, len(schema.Columns))
	for i, col := range schema.Columns {
		colMap := map[string]interface{}{
			"name": col.Name,
			"type": col.Type,
		}
		if col.Default != nil {
			colMap["default"] = canonicalizeValue(col.Default)
		}
		if col.Format != "" {
			colMap["format"] = col.Format
		}
		if len(col.Seed) > 0 {
			seed := make([]interface{}, len(col.Seed))
			for j, v := range col.Seed {
				seed[j] = canonicalizeValue(v)
			}
			colMap["seed"] = seed
		}
		columns[i] = colMap
	}

	result := map[string]interface{}{
		"name":    schema.Name,
		"columns": columns,
	}
	if schema.Provider != "" {
		result["provider"] = schema.Provider
	}
	if schema.Roles != nil {
		result["roles"] = schema.Roles.Names()
	}

	return result
}

func canonicalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case map[string]interface{}:
		return canonicalizeParams(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = canonicalizeValue(val[i])
		}
		return out
	case string, bool, int, int64, float64, nil:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func canonicalizeParams(params map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		result[k] = canonicalizeValue(params[k])
	}
	return result
}

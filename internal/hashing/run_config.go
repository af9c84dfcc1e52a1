package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/costgen/internal/domain"
)

type runConfigHashPayload struct {
	SchemaHash     string `json:"schema_hash"`
	Provider       string `json:"provider"`
	SinkKind       string `json:"sink_kind"`
	SinkDSN        string `json:"sink_dsn"`
	SinkTable      string `json:"sink_table,omitempty"`
	Rows           int64  `json:"rows"`
	UntilPeriodEnd bool   `json:"until_period_end"`
	Seed           int64  `json:"seed"`
}

// HashRunConfig digests everything that determines a run's output.
func HashRunConfig(schema *domain.Schema, provider string, sink domain.SinkConfig, rows int64, untilPeriodEnd bool, seed int64) (string, error) {
	sh, err := HashSchema(schema)
	if err != nil {
		return "", err
	}

	p := runConfigHashPayload{
		SchemaHash:     sh,
		Provider:       provider,
		SinkKind:       sink.Kind,
		SinkDSN:        sink.DSN,
		SinkTable:      sink.Table,
		Rows:           rows,
		UntilPeriodEnd: untilPeriodEnd,
		Seed:           seed,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

package app

import (
	"fmt"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/exec"
	"github.com/mmrzaf/costgen/internal/infra/sinks/csvfile"
	"github.com/mmrzaf/costgen/internal/infra/sinks/postgres"
	"github.com/mmrzaf/costgen/internal/infra/sinks/sqlite"
)

func buildSink(cfg domain.SinkConfig) (exec.Sink, error) {
	switch cfg.Kind {
	case domain.SinkKindCSV:
		return csvfile.NewCSVSink(cfg.DSN), nil
	case domain.SinkKindSQLite:
		return sqlite.NewSQLiteSink(cfg.DSN, cfg.Table), nil
	case domain.SinkKindPostgres:
		return postgres.NewPostgresSink(cfg.DSN, cfg.Schema, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unsupported sink kind: %s", cfg.Kind)
	}
}

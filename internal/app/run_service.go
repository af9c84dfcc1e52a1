package app

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/exec"
	"github.com/mmrzaf/costgen/internal/hashing"
	"github.com/mmrzaf/costgen/internal/infra/repos/runs"
	"github.com/mmrzaf/costgen/internal/infra/repos/schemas"
	"github.com/mmrzaf/costgen/internal/infra/sinks"
	"github.com/mmrzaf/costgen/internal/logging"
	"github.com/mmrzaf/costgen/internal/providers"
	"github.com/mmrzaf/costgen/internal/validation"
)

type RunService struct {
	schemaRepo schemas.Repository
	runRepo    runs.Repository
	executor   *exec.Executor
	logger     *logging.Logger
	batchSize  int
}

func NewRunService(
	schemaRepo schemas.Repository,
	runRepo runs.Repository,
	logger *logging.Logger,
	batchSize int,
) *RunService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RunService{
		schemaRepo: schemaRepo,
		runRepo:    runRepo,
		executor:   exec.NewExecutor(logger),
		logger:     logger.WithComponent("app"),
		batchSize:  batchSize,
	}
}

// LoadSchema resolves a schema by id or name, else by path.
func (s *RunService) LoadSchema(id, path string) (*domain.Schema, error) {
	switch {
	case id != "":
		return s.schemaRepo.Get(id)
	case path != "":
		return s.schemaRepo.GetByPath(path)
	default:
		return nil, errors.New("schema id or path is required")
	}
}

func (s *RunService) ListSchemas() ([]*domain.Schema, error) {
	return s.schemaRepo.List()
}

// Generate runs req to completion and records it. The returned run is
// non-nil once it has been recorded, even when the run failed.
func (s *RunService) Generate(ctx context.Context, req *domain.RunRequest) (*domain.Run, error) {
	if err := validation.ValidateSinkConfig(req.Sink); err != nil {
		return nil, fmt.Errorf("invalid sink: %w", err)
	}

	loaded, err := s.LoadSchema(req.SchemaID, req.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	provider := req.Provider
	if provider == "" {
		provider = loaded.Provider
	}
	p, err := providers.Lookup(provider)
	if err != nil {
		return nil, err
	}

	schema, err := applyPeriodOverrides(loaded, p, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateSchema(schema); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	seed := generateSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	configHash, err := hashing.HashRunConfig(schema, p.Name, req.Sink, req.Rows, req.UntilPeriodEnd, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	run := &domain.Run{
		SchemaID:   schema.ID,
		SchemaName: schema.Name,
		Provider:   p.Name,
		SinkKind:   req.Sink.Kind,
		SinkDSN:    sinks.RedactDSN(req.Sink.DSN),
		Seed:       seed,
		ConfigHash: configHash,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	s.logger.Infow("run.started", map[string]any{
		"run_id":   run.ID,
		"schema":   schema.Name,
		"provider": p.Name,
		"sink":     req.Sink.Kind,
		"seed":     seed,
	})

	stats, err := s.execute(ctx, schema, p.Name, seed, req)
	if err != nil {
		s.logger.Errorw("run.failed", map[string]any{"run_id": run.ID, "error": err})
		s.updateRunFailed(run, err.Error())
		return run, err
	}

	now := time.Now().UTC()
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return run, err
	}
	run.Stats = statsJSON
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
		return run, err
	}

	s.logger.Infow("run.completed", map[string]any{
		"run_id":      run.ID,
		"rows":        stats.RowsGenerated,
		"stop_reason": stats.StopReason,
		"duration_s":  stats.DurationSeconds,
	})
	return run, nil
}

func (s *RunService) execute(ctx context.Context, schema *domain.Schema, provider string, seed int64, req *domain.RunRequest) (*domain.RunStats, error) {
	built, err := providers.Build(schema, provider, providers.Options{Seed: seed, Logger: s.logger})
	if err != nil {
		return nil, err
	}
	if req.UntilPeriodEnd && built.Chrono == nil {
		return nil, fmt.Errorf("schema %s has no report period to generate until", schema.Name)
	}

	sink, err := buildSink(req.Sink)
	if err != nil {
		return nil, err
	}

	return s.executor.Execute(ctx, built.Generator, sink, exec.Options{
		Rows:           req.Rows,
		UntilPeriodEnd: req.UntilPeriodEnd,
		BatchSize:      s.batchSize,
	})
}

// applyPeriodOverrides returns a copy of schema whose period role columns
// default to start and end. The repository's schema is never modified.
func applyPeriodOverrides(schema *domain.Schema, p providers.Provider, start, end *time.Time) (*domain.Schema, error) {
	cp := schema.Clone()
	if start == nil && end == nil {
		return cp, nil
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, fmt.Errorf("report period start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	roles := p.ResolveRoles(cp)
	if roles == nil {
		return nil, fmt.Errorf("schema %s has no report period roles to override", schema.Name)
	}

	set := func(name string, v *time.Time) error {
		if v == nil {
			return nil
		}
		col, ok := cp.Column(name)
		if !ok {
			return &validation.SchemaError{Column: name, Msg: fmt.Sprintf("report period column '%s' not found", name)}
		}
		col.Default = v.UTC()
		return nil
	}
	if err := set(roles.PeriodStart, start); err != nil {
		return nil, err
	}
	if err := set(roles.PeriodEnd, end); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *RunService) updateRunFailed(run *domain.Run, errorMsg string) {
	now := time.Now().UTC()
	run.Status = domain.RunStatusFailed
	run.Error = errorMsg
	run.CompletedAt = &now
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	return s.runRepo.List(limit, status)
}

func generateSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

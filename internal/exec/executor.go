package exec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/costgen/internal/chrono"
	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/logging"
	"github.com/mmrzaf/costgen/internal/record"
)

// Sink consumes generated rows.
type Sink interface {
	Open(header []string) error
	WriteBatch(rows []domain.Row) error
	Close() error
}

// Source produces rows; *record.Generator satisfies it.
type Source interface {
	Header() []string
	Lines() *record.Lines
}

const DefaultBatchSize = 1000

type Options struct {
	// Rows caps the number of rows pulled. Zero means no cap, which is only
	// allowed together with UntilPeriodEnd.
	Rows int64
	// UntilPeriodEnd stops cleanly when the usage intervals leave the
	// report period instead of failing the run.
	UntilPeriodEnd bool
	BatchSize      int
}

type Executor struct {
	logger *logging.Logger
}

func NewExecutor(logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{logger: logger.WithComponent("exec")}
}

// Execute pulls rows from src into sink until a stop condition is met.
func (e *Executor) Execute(ctx context.Context, src Source, sink Sink, opts Options) (*domain.RunStats, error) {
	if opts.Rows <= 0 && !opts.UntilPeriodEnd {
		return nil, errors.New("row limit must be > 0 unless generating until the period end")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	startTime := time.Now()
	if err := sink.Open(src.Header()); err != nil {
		return nil, fmt.Errorf("failed to open sink: %w", err)
	}

	stats, err := e.pump(ctx, src.Lines(), sink, opts, batchSize)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close sink: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	stats.DurationSeconds = time.Since(startTime).Seconds()
	e.logger.Infow("run.generated", map[string]any{
		"rows":        stats.RowsGenerated,
		"batches":     stats.Batches,
		"stop_reason": stats.StopReason,
	})
	return stats, nil
}

func (e *Executor) pump(ctx context.Context, lines *record.Lines, sink Sink, opts Options, batchSize int) (*domain.RunStats, error) {
	stats := &domain.RunStats{StopReason: domain.StopReasonRowLimit}
	batch := make([]domain.Row, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.WriteBatch(batch); err != nil {
			return fmt.Errorf("failed to write batch ending at row %d: %w", stats.RowsGenerated, err)
		}
		stats.Batches++
		batch = make([]domain.Row, 0, batchSize)
		return nil
	}

	for opts.Rows <= 0 || stats.RowsGenerated < opts.Rows {
		if err := ctx.Err(); err != nil {
			if flushErr := flush(); flushErr != nil {
				return nil, flushErr
			}
			stats.StopReason = domain.StopReasonCanceled
			return stats, nil
		}

		row, err := lines.Next(nil)
		if err != nil {
			// a period that yields no row at all is misconfigured, not exhausted
			if opts.UntilPeriodEnd && stats.RowsGenerated > 0 && errors.Is(err, chrono.ErrOutOfBounds) {
				stats.StopReason = domain.StopReasonPeriodEnd
				break
			}
			return nil, err
		}
		batch = append(batch, row)
		stats.RowsGenerated++

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
			e.logger.Debugw("run.batch_written", map[string]any{"rows": stats.RowsGenerated})
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return stats, nil
}

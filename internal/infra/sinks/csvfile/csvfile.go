// Package csvfile writes generated rows as a CSV report with a header line.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/infra/sinks"
)

type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// NewCSVWriterSink writes to w instead of a file. Close flushes but does not
// close w.
func NewCSVWriterSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) Open(header []string) error {
	if s.w == nil {
		if dir := filepath.Dir(s.path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		f, err := os.Create(s.path)
		if err != nil {
			return err
		}
		s.file = f
		s.w = csv.NewWriter(f)
	}
	return s.w.Write(header)
}

func (s *CSVSink) WriteBatch(rows []domain.Row) error {
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i], _ = sinks.Text(v)
		}
		if err := s.w.Write(record); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	var err error
	if s.w != nil {
		s.w.Flush()
		err = s.w.Error()
	}
	if s.file != nil {
		if cerr := s.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.file = nil
	}
	return err
}

// pkg/sink/csv.go
package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
)

// CSVSink writes canonical long-format datasets as <dir>/<output>.csv, the
// layout the dashboard's data loader expects. Columns are the identifier
// columns, the category, the measure, then any derived ordinals; unset
// derived fields stay empty.
type CSVSink struct {
	dir    string
	logger *zap.Logger
}

// NewCSVSink creates a CSV sink, creating the output directory if needed.
func NewCSVSink(dir string, logger *zap.Logger) (*CSVSink, error) {
	if dir == "" {
		return nil, errors.New("clean directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clean directory: %w", err)
	}
	return &CSVSink{dir: dir, logger: logger.Named("csv-sink")}, nil
}

// WriteTable writes one dataset.
func (s *CSVSink) WriteTable(ctx context.Context, rules *model.RuleSet, records []model.CanonicalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, rules.Output+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	header := make([]string, 0, len(rules.IdentifierColumns)+2+len(rules.Derived))
	header = append(header, rules.IdentifierColumns...)
	header = append(header, rules.CategoryName, rules.MeasureName)
	for _, d := range rules.Derived {
		header = append(header, d.Name)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}

	line := make([]string, len(header))
	for _, rec := range records {
		line = line[:0]
		for _, id := range rules.IdentifierColumns {
			line = append(line, rec.Identifiers[id])
		}
		line = append(line, rec.Category, strconv.FormatInt(rec.Measure, 10))
		for _, d := range rules.Derived {
			if v, ok := rec.Derived[d.Name]; ok {
				line = append(line, strconv.Itoa(v))
			} else {
				line = append(line, "")
			}
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write record to %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	s.logger.Info("Wrote dataset",
		zap.String("output", rules.Output),
		zap.Int("records", len(records)))

	return nil
}

// Close implements RecordSink.
func (s *CSVSink) Close() error {
	return nil
}

// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
)

// CSVSource serves raw tables from a directory of <name>.csv files, the
// layout the INE exports arrive in. The first row is the header.
type CSVSource struct {
	dir    string
	logger *zap.Logger
}

// NewCSVSource creates a CSV directory source.
func NewCSVSource(dir string, logger *zap.Logger) (*CSVSource, error) {
	if dir == "" {
		return nil, errors.New("data directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &CSVSource{dir: dir, logger: logger.Named("csv-source")}, nil
}

// FetchTable reads <dir>/<name>.csv into a RawTable. Short rows leave the
// trailing cells empty; extra cells beyond the header are ignored.
func (s *CSVSource) FetchTable(ctx context.Context, name string) (*model.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingSourceError{Name: name, Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // source exports have ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s is empty", name)
	}

	header := rows[0]
	table := &model.RawTable{
		Name:    name,
		Columns: header,
		Rows:    make([]model.Row, 0, len(rows)-1),
	}
	for _, cells := range rows[1:] {
		row := make(model.Row, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	s.logger.Debug("Fetched table",
		zap.String("table", name),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(header)))

	return table, nil
}

// Close implements TableSource; a CSV directory holds no resources.
func (s *CSVSource) Close() error {
	return nil
}

// pkg/sink/postgres.go
package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/config"
	"github.com/transito-gt/tablero/pkg/model"
)

// PostgresSink persists canonical datasets into a warehouse schema, one
// table per dataset. Identifier and category columns are text, the measure
// is bigint, derived ordinals are nullable integers.
type PostgresSink struct {
	db     *sqlx.DB
	schema string
	batch  int
	logger *zap.Logger

	// created tracks which dataset tables exist; pipeline workers call
	// WriteTable concurrently, so access goes through the mutex.
	mu      sync.Mutex
	created map[string]bool
}

// NewPostgresSink opens the warehouse connection and ensures the schema.
func NewPostgresSink(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresSink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres configuration cannot be nil")
	}
	logger = logger.Named("postgres-sink")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database))

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.StatementTimeout > 0 {
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds())); err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	s := &PostgresSink{
		db:      db,
		schema:  "data_clean",
		batch:   cfg.BatchSize,
		logger:  logger,
		created: make(map[string]bool),
	}
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+s.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema %s: %w", s.schema, err)
	}
	return s, nil
}

// WriteTable replaces the dataset's table contents with the given records.
func (s *PostgresSink) WriteTable(ctx context.Context, rules *model.RuleSet, records []model.CanonicalRecord) error {
	if err := s.ensureTable(ctx, rules); err != nil {
		return err
	}

	fullName := fmt.Sprintf("%s.%s", s.schema, rules.Output)
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE "+fullName); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", fullName, err)
	}

	columns := s.columns(rules)
	batch := s.batch
	if batch <= 0 {
		batch = 1000
	}

	var total int64
	for start := 0; start < len(records); start += batch {
		end := start + batch
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]interface{}, 0, len(chunk)*len(columns))
		for i, rec := range chunk {
			cell := make([]string, len(columns))
			for j := range columns {
				cell[j] = fmt.Sprintf("$%d", i*len(columns)+j+1)
			}
			placeholders[i] = "(" + strings.Join(cell, ", ") + ")"

			for _, id := range rules.IdentifierColumns {
				args = append(args, rec.Identifiers[id])
			}
			args = append(args, rec.Category, rec.Measure)
			for _, d := range rules.Derived {
				if v, ok := rec.Derived[d.Name]; ok {
					args = append(args, v)
				} else {
					args = append(args, nil)
				}
			}
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			fullName, strings.Join(quoteAll(columns), ", "), strings.Join(placeholders, ", "))
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("batch insert into %s failed: %w", fullName, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}

	s.logger.Info("Wrote dataset",
		zap.String("table", fullName),
		zap.Int64("rows", total))

	return nil
}

func (s *PostgresSink) ensureTable(ctx context.Context, rules *model.RuleSet) error {
	if s.alreadyCreated(rules.Output) {
		return nil
	}

	defs := make([]string, 0, len(rules.IdentifierColumns)+2+len(rules.Derived))
	for _, id := range rules.IdentifierColumns {
		defs = append(defs, quoteIdent(id)+" TEXT NOT NULL")
	}
	defs = append(defs,
		quoteIdent(rules.CategoryName)+" TEXT NOT NULL",
		quoteIdent(rules.MeasureName)+" BIGINT NOT NULL")
	for _, d := range rules.Derived {
		defs = append(defs, quoteIdent(d.Name)+" INTEGER")
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (\n\t%s\n)",
		s.schema, rules.Output, strings.Join(defs, ",\n\t"))
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", rules.Output, err)
	}

	s.markCreated(rules.Output)
	return nil
}

func (s *PostgresSink) alreadyCreated(output string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created[output]
}

func (s *PostgresSink) markCreated(output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created[output] = true
}

// columns returns the table's column names in insert order.
func (s *PostgresSink) columns(rules *model.RuleSet) []string {
	cols := make([]string, 0, len(rules.IdentifierColumns)+2+len(rules.Derived))
	cols = append(cols, rules.IdentifierColumns...)
	cols = append(cols, rules.CategoryName, rules.MeasureName)
	for _, d := range rules.Derived {
		cols = append(cols, d.Name)
	}
	return cols
}

// quoteIdent quotes a column name; source headers carry accents and spaces
// ("año", "Unnamed: 6").
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}

// Close closes the warehouse connection.
func (s *PostgresSink) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	return s.db.Close()
}

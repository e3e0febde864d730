// pkg/source/snowflake.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/config"
	"github.com/transito-gt/tablero/pkg/model"
)

// SnowflakeSource serves raw tables from the INE statistical warehouse.
// Cell values are fetched as text; coercion is the normalizer's job.
type SnowflakeSource struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeSource opens a warehouse connection and verifies it.
func NewSnowflakeSource(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("snowflake configuration cannot be nil")
	}
	logger = logger.Named("snowflake-source")

	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	return &SnowflakeSource{db: db, logger: logger, cfg: cfg}, nil
}

// FetchTable reads every row of the named warehouse table into a RawTable.
func (s *SnowflakeSource) FetchTable(ctx context.Context, name string) (*model.RawTable, error) {
	queryCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", s.cfg.Schema, name)
	rows, err := s.db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, &MissingSourceError{Name: name, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	table := &model.RawTable{Name: name, Columns: columns}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range cells {
			scanArgs[i] = &cells[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}

		row := make(model.Row, len(columns))
		for i, col := range columns {
			if cells[i].Valid {
				row[col] = cells[i].String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", name, err)
	}

	s.logger.Debug("Fetched table",
		zap.String("table", name),
		zap.Int("rows", len(table.Rows)))

	return table, nil
}

// Close closes the warehouse connection.
func (s *SnowflakeSource) Close() error {
	s.logger.Info("Closing Snowflake connection")
	return s.db.Close()
}

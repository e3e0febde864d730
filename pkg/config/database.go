// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfig holds connection parameters for the statistical warehouse
// that serves raw cuadro tables.
type SnowflakeConfig struct {
	User      string
	Password  string
	Account   string
	Warehouse string
	Database  string
	Schema    string
	Role      string

	Authenticator gosnowflake.AuthType
	QueryTimeout  time.Duration
}

// PostgresConfig holds connection parameters for the canonical-record sink.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	BatchSize        int
	StatementTimeout time.Duration
}

// LoadSnowflakeConfig loads Snowflake configuration from environment
// variables. Only called when the warehouse source is requested, so the
// variables are not required for CSV-only runs.
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	user := getEnv("SNOWFLAKE_USER", "")
	if user == "" {
		return nil, errors.New("SNOWFLAKE_USER environment variable is required")
	}

	password := getEnv("SNOWFLAKE_PASSWORD", "")
	if password == "" {
		return nil, errors.New("SNOWFLAKE_PASSWORD environment variable is required")
	}

	account := getEnv("SNOWFLAKE_ACCOUNT", "")
	if account == "" {
		return nil, errors.New("SNOWFLAKE_ACCOUNT environment variable is required")
	}

	warehouse := getEnv("SNOWFLAKE_WAREHOUSE", "")
	if warehouse == "" {
		return nil, errors.New("SNOWFLAKE_WAREHOUSE environment variable is required")
	}

	var authenticator gosnowflake.AuthType
	switch getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake") {
	case "oauth":
		authenticator = gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		authenticator = gosnowflake.AuthTypeExternalBrowser
	case "jwt":
		authenticator = gosnowflake.AuthTypeJwt
	default:
		authenticator = gosnowflake.AuthTypeSnowflake
	}

	return &SnowflakeConfig{
		User:          user,
		Password:      password,
		Account:       account,
		Warehouse:     warehouse,
		Database:      getEnv("SNOWFLAKE_DATABASE", "INE_TRANSITO"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,
		QueryTimeout:  time.Duration(getEnvAsInt("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment
// variables. Only called when the Postgres sink is requested.
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := getEnv("POSTGRES_USER", "")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	password := getEnv("POSTGRES_PASSWORD", "")
	if password == "" {
		return nil, errors.New("POSTGRES_PASSWORD environment variable is required")
	}

	database := getEnv("POSTGRES_DB", "")
	if database == "" {
		return nil, errors.New("POSTGRES_DB environment variable is required")
	}

	return &PostgresConfig{
		Host:             getEnv("POSTGRES_HOST", "localhost"),
		Port:             getEnvAsInt("POSTGRES_PORT", 5432),
		User:             user,
		Password:         password,
		Database:         database,
		SSLMode:          getEnv("POSTGRES_SSLMODE", "disable"),
		BatchSize:        getEnvAsInt("POSTGRES_BATCH_SIZE", 1000),
		StatementTimeout: time.Duration(getEnvAsInt("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}, nil
}

// ConnectionString returns a formatted PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

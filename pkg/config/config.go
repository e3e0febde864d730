// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	// Data locations
	DataDir    string // raw cuadro CSVs
	CleanDir   string // canonical long-format outputs
	ModelsPath string // model-metrics artifact (resumen_modelos.json)
	RulesPath  string // optional YAML rule-set overrides

	// Pipeline settings
	WorkerPoolSize int // <=0 falls back to the pipeline default of 4 workers

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration with precedence: environment > config file >
// defaults. A .env file is loaded first when present so local runs behave
// like deployed ones.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TABLERO")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("clean_dir", "./data_clean")
	v.SetDefault("models_path", "./models/resumen_modelos.json")
	v.SetDefault("rules_path", "")
	v.SetDefault("worker_pool_size", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tablero")
		v.SetConfigType("yaml")
		_ = v.ReadInConfig() // optional
	}

	cfg := &Config{
		DataDir:        v.GetString("data_dir"),
		CleanDir:       v.GetString("clean_dir"),
		ModelsPath:     v.GetString("models_path"),
		RulesPath:      v.GetString("rules_path"),
		WorkerPoolSize: v.GetInt("worker_pool_size"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.CleanDir == "" {
		return errors.New("clean directory is required")
	}
	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.New("log format must be json or console")
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

package neomap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the connection settings of a Neo4jExecutor.
type Config struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// LogLevel is parsed by slog ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level"`
	// LogQueries logs every executed query at debug level.
	LogQueries bool `yaml:"log_queries"`
}

// DefaultConfig returns the settings of a local, single-instance Neo4j.
func DefaultConfig() Config {
	return Config{
		URI:      "neo4j://localhost:7687",
		Username: "neo4j",
		Database: "neo4j",
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML file over the defaults and then applies environment
// overrides (NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD, NEO4J_DATABASE,
// NEOMAP_LOG_LEVEL, NEOMAP_LOG_QUERIES). An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	for env, dst := range map[string]*string{
		"NEO4J_URI":        &c.URI,
		"NEO4J_USERNAME":   &c.Username,
		"NEO4J_PASSWORD":   &c.Password,
		"NEO4J_DATABASE":   &c.Database,
		"NEOMAP_LOG_LEVEL": &c.LogLevel,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("NEOMAP_LOG_QUERIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NEOMAP_LOG_QUERIES: %w", err)
		}
		c.LogQueries = b
	}
	return nil
}

// Validate reports missing or unparsable settings.
func (c Config) Validate() error {
	var errs []error
	if c.URI == "" {
		errs = append(errs, errors.New("uri is required"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns LogLevel as a slog level; empty means info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

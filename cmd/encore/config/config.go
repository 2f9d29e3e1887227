// Package config provides configuration structures for the encore CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents the CLI configuration.
type Config struct {
	// Database connection settings
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Benchmark settings
	Benchmark BenchmarkConfig `yaml:"benchmark" json:"benchmark"`

	// Optimizer trace settings
	Trace TraceConfig `yaml:"trace" json:"trace"`

	// File export settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DatabaseConfig represents the MySQL endpoint configuration.
type DatabaseConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	User           string        `yaml:"user" json:"user"`
	Password       string        `yaml:"password" json:"password"`
	Name           string        `yaml:"name" json:"name"`
	Charset        string        `yaml:"charset" json:"charset"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// BenchmarkConfig represents benchmark iteration configuration.
type BenchmarkConfig struct {
	// Iterations is the per-strategy run count of the join sweep.
	Iterations int `yaml:"iterations" json:"iterations"`
	// PlanIterations is the per-form run count of the plan comparison.
	PlanIterations int `yaml:"plan_iterations" json:"plan_iterations"`
}

// TraceConfig represents optimizer trace configuration.
type TraceConfig struct {
	// MaxMemSize is applied as optimizer_trace_max_mem_size before every
	// traced run.
	MaxMemSize int64 `yaml:"max_mem_size" json:"max_mem_size"`
}

// ExportConfig represents file export configuration.
type ExportConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// Validate validates the configuration and fills unset fields with
// defaults.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port <= 0 {
		c.Database.Port = 3306
	}
	if c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "MusicFestival"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.ConnectTimeout <= 0 {
		c.Database.ConnectTimeout = 10 * time.Second
	}

	if c.Benchmark.Iterations <= 0 {
		c.Benchmark.Iterations = 5
	}
	if c.Benchmark.PlanIterations <= 0 {
		c.Benchmark.PlanIterations = 1
	}

	if c.Trace.MaxMemSize <= 0 {
		c.Trace.MaxMemSize = 1000000
	}

	if c.Export.Dir == "" {
		c.Export.Dir = "sql"
	}

	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           3306,
			User:           "root",
			Password:       "",
			Name:           "MusicFestival",
			Charset:        "utf8mb4",
			ConnectTimeout: 10 * time.Second,
		},
		Benchmark: BenchmarkConfig{
			Iterations:     5,
			PlanIterations: 1,
		},
		Trace: TraceConfig{
			MaxMemSize: 1000000,
		},
		Export: ExportConfig{
			Dir: "sql",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
		LogLevel: "info",
	}
}

package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/dmaclay/backstop/validation"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ValidationConfig carries the tolerance bands separating PASS, WARN and
// HALT verdicts. They are configuration, not magic numbers: defaults are the
// documented validation package constants.
type ValidationConfig struct {
	PassTolerance float64 `yaml:"pass_tolerance"`
	HaltTolerance float64 `yaml:"halt_tolerance"`
}

// DisplayConfig controls formatted output precision
type DisplayConfig struct {
	Places int32 `yaml:"places"` // decimal places for display strings
}

// AuditConfig represents validation audit trail configuration
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Validation ValidationConfig `yaml:"validation"`
	Display    DisplayConfig    `yaml:"display"`
	Audit      AuditConfig      `yaml:"audit"`
}

// Load reads configuration from environment variables, overlaid by
// config.yaml when one exists in the working directory.
func Load() *Config {
	return LoadFrom("config.yaml")
}

// LoadFrom is Load with an explicit YAML path, for tests and the CLI.
func LoadFrom(path string) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Validation: ValidationConfig{
			PassTolerance: getEnvFloat("VALIDATION_PASS_TOLERANCE", validation.DefaultPassTolerance),
			HaltTolerance: getEnvFloat("VALIDATION_HALT_TOLERANCE", validation.DefaultHaltTolerance),
		},
		Display: DisplayConfig{
			Places: int32(getEnvInt("DISPLAY_PLACES", 6)),
		},
		Audit: AuditConfig{
			Enabled: getEnvBool("AUDIT_ENABLED", false),
			File:    getEnv("AUDIT_FILE", "validation_audit.jsonl"),
		},
	}

	if yamlCfg := loadYAMLConfig(path); yamlCfg != nil {
		if yamlCfg.Server.Port != "" {
			cfg.Server.Port = yamlCfg.Server.Port
		}
		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Validation.PassTolerance > 0 {
			cfg.Validation.PassTolerance = yamlCfg.Validation.PassTolerance
		}
		if yamlCfg.Validation.HaltTolerance > 0 {
			cfg.Validation.HaltTolerance = yamlCfg.Validation.HaltTolerance
		}
		if yamlCfg.Display.Places > 0 {
			cfg.Display.Places = yamlCfg.Display.Places
		}
		if yamlCfg.Audit.Enabled {
			cfg.Audit.Enabled = true
		}
		if yamlCfg.Audit.File != "" {
			cfg.Audit.File = yamlCfg.Audit.File
		}
	}

	return cfg
}

// Checker builds the validation checker from the configured bands, falling
// back to the defaults when the configured bands are unusable.
func (c *Config) Checker() validation.Checker {
	checker, err := validation.NewChecker(c.Validation.PassTolerance, c.Validation.HaltTolerance)
	if err != nil {
		return validation.DefaultChecker()
	}
	return checker
}

func loadYAMLConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		// No config file is fine; env and defaults apply.
		return nil
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

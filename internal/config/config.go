// Package config loads the aspectswrl configuration file.
//
// Example aspectswrl.yaml:
//
//	ontology_iri: http://example.org/family#
//	database: family.db
//	id_scheme: ulid
//	log_level: debug
//
// Every field is optional; Default supplies the rest. Command-line flags
// override file values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the aspectswrl runtime configuration.
type Config struct {
	// OntologyIRI names the ontology; synthesized entities are named under it.
	// May be empty when the database already records one.
	OntologyIRI string `yaml:"ontology_iri" validate:"omitempty,uri"`

	// Database is the SQLite file path.
	Database string `yaml:"database" validate:"required"`

	// IDScheme selects the identifier generator for synthesized entities.
	IDScheme string `yaml:"id_scheme" validate:"oneof=uuid ulid"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: "aspectswrl.db",
		IDScheme: "uuid",
		LogLevel: "info",
	}
}

// configValidate is the validator instance for Config.
var configValidate = validator.New()

// Load reads path over Default and validates the result.
// A missing file is an error; use Default directly when there is none.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %q)", yamlName(fe.Field()), fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func yamlName(field string) string {
	switch field {
	case "OntologyIRI":
		return "ontology_iri"
	case "Database":
		return "database"
	case "IDScheme":
		return "id_scheme"
	case "LogLevel":
		return "log_level"
	}
	return field
}

// SlogLevel converts LogLevel to a slog.Level. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

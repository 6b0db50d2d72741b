// Package config holds the run configuration for the components tools: an
// optional YAML file, overridden by command-line flags, validated before
// anything is allocated.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config is the full configuration of a components run.
type Config struct {
	// Capacity is the maximum number of edges the run can hold. It sizes
	// the edge store up front and cannot change afterwards.
	Capacity int `yaml:"capacity" validate:"required,gt=0"`

	// BackingPath, when set, stores the edge array in a mapped file at
	// that path (created fresh, unlinked immediately) instead of
	// anonymous memory. The path must not already exist.
	BackingPath string `yaml:"backing_path"`

	// ReverseIndex enables the label → members relabeling acceleration.
	ReverseIndex bool `yaml:"reverse_index"`

	// Output is the destination for (node, label) pairs; "-" means stdout.
	Output string `yaml:"output"`

	// Compress writes the output as a snappy-framed stream.
	Compress bool `yaml:"compress"`

	// MetricsAddr, when set, serves Prometheus metrics on that address
	// for the duration of the run.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration before any file or flag is applied.
func Default() Config {
	return Config{
		Output:   "-",
		LogLevel: "info",
	}
}

// LoadFile merges the YAML file at path over cfg. Unknown keys are
// rejected: a typo in a config file should not silently become a default.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the assembled configuration. A missing or zero capacity
// is the classic misconfiguration and must fail before any storage is
// created.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Field() == "Capacity" {
				return fmt.Errorf("capacity must be a positive integer (got %v)", fe.Value())
			}
			return fmt.Errorf("invalid configuration: field %s fails %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// File: config/config.go
// Package config loads the optional YAML settings file shared by the
// framebench commands. Command-line flags override anything set here.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File mirrors the YAML settings file. Zero values mean "not set".
type File struct {
	LogLevel            string        `yaml:"log_level"`
	LogJSON             bool          `yaml:"log_json"`
	MetricsAddr         string        `yaml:"metrics_addr"`
	PrometheusRetention time.Duration `yaml:"prometheus_retention"`
	StatsInterval       time.Duration `yaml:"stats_interval"`

	Producers     int  `yaml:"producers"`
	PinProducers  bool `yaml:"pin_producers"`
	QueueCapacity int  `yaml:"queue_capacity"`

	ReportInterval time.Duration `yaml:"report_interval"`

	RegistryPath string `yaml:"registry_path"`
}

// Default returns the settings used when no file is given.
func Default() *File {
	return &File{
		LogLevel:            "info",
		PrometheusRetention: time.Minute,
		ReportInterval:      time.Second,
		RegistryPath:        "framebench-services.db",
	}
}

// Load reads path over Default. An empty path returns Default.
func Load(path string) (*File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	if err := Decode(f, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *File) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (f *File) Validate() error {
	var errs []error
	if !ValidateLogLevel(f.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log_level %q, valid levels are %v", f.LogLevel, allowedLogLevels))
	}
	if f.Producers < 0 {
		errs = append(errs, fmt.Errorf("producers must not be negative, got %d", f.Producers))
	}
	if f.QueueCapacity < 0 {
		errs = append(errs, fmt.Errorf("queue_capacity must not be negative, got %d", f.QueueCapacity))
	}
	if f.ReportInterval < 0 || f.StatsInterval < 0 || f.PrometheusRetention < 0 {
		errs = append(errs, errors.New("intervals must not be negative"))
	}
	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateComposition(); err != nil {
		return err
	}
	if err := c.validateSplice(); err != nil {
		return err
	}
	if err := c.validateOracle(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateComposition() error {
	x, z := c.Composition.X, c.Composition.Z
	if math.IsNaN(x) || x < 0 || x > 1 {
		return fmt.Errorf("composition.x must be between 0 and 1, got %v", x)
	}
	if math.IsNaN(z) || z < 0 || z > 1 {
		return fmt.Errorf("composition.z must be between 0 and 1, got %v", z)
	}
	if x+z > 1 {
		return fmt.Errorf("composition.x + composition.z must not exceed 1, got %v", x+z)
	}
	return nil
}

func (c *Config) validateSplice() error {
	s := c.Splice
	if s.MinTemperature > s.MaxTemperature {
		return fmt.Errorf("splice.min_temperature (%v) must not exceed splice.max_temperature (%v)",
			s.MinTemperature, s.MaxTemperature)
	}
	if math.IsNaN(s.Temperature) || math.IsInf(s.Temperature, 0) {
		return errors.New("splice.temperature must be finite")
	}
	if math.IsNaN(s.Sentinel) || math.IsInf(s.Sentinel, 0) {
		return errors.New("splice.sentinel must be finite")
	}
	if s.ProgressEvery <= 0 {
		return errors.New("splice.progress_every must be positive")
	}
	return nil
}

func (c *Config) validateOracle() error {
	if c.Oracle.Binary == "" {
		return errors.New("oracle.binary must be set")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return errors.New("oracle.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Path == "" {
		return errors.New("output.path must be set")
	}
	inputs := map[string]string{
		"inputs.opal_table": c.Inputs.OPALTable,
		"inputs.la08_table": c.Inputs.LA08Table,
		"inputs.la08_sets":  c.Inputs.LA08Sets,
	}
	for name, path := range inputs {
		if path == c.Output.Path {
			return fmt.Errorf("output.path must not overwrite %s (%s)", name, path)
		}
	}
	if c.Output.ComparisonPlot && c.Output.PlotPath == "" {
		return errors.New("output.plot_path must be set when output.comparison_plot is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

// Normalize expands paths and fills empty values with defaults. It is safe
// to call more than once, which lets callers re-normalize after applying
// command-line overrides.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSplice()
	c.normalizeOracle()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"inputs.opal_table", &c.Inputs.OPALTable, defaultOPALTable},
		{"inputs.la08_table", &c.Inputs.LA08Table, defaultLA08Table},
		{"inputs.la08_sets", &c.Inputs.LA08Sets, defaultLA08Sets},
		{"output.path", &c.Output.Path, defaultOutputPath},
		{"output.plot_path", &c.Output.PlotPath, defaultPlotPath},
		{"oracle.dir", &c.Oracle.Dir, defaultOracleDir},
		{"cache.path", &c.Cache.Path, defaultCachePath},
	}
	for _, field := range fields {
		value := strings.TrimSpace(*field.value)
		if value == "" {
			value = field.fallback
		}
		expanded, err := expandPath(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeSplice() {
	if c.Splice.MinTemperature == 0 && c.Splice.MaxTemperature == 0 {
		c.Splice.MinTemperature = defaultMinSpliceT
		c.Splice.MaxTemperature = defaultMaxSpliceT
	}
	if c.Splice.ProgressEvery <= 0 {
		c.Splice.ProgressEvery = defaultProgressEvery
	}
}

func (c *Config) normalizeOracle() {
	// The binary stays relative: it is resolved against oracle.dir at run time.
	c.Oracle.Binary = strings.TrimSpace(c.Oracle.Binary)
	if c.Oracle.Binary == "" {
		c.Oracle.Binary = defaultOracleBinary
	}
	c.Oracle.BuildCommand = strings.TrimSpace(c.Oracle.BuildCommand)
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = defaultOracleTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

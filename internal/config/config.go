package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Inputs locates the two source opacity tables.
type Inputs struct {
	OPALTable string `toml:"opal_table"`
	LA08Table string `toml:"la08_table"`
	LA08Sets  string `toml:"la08_sets"`
}

// Output controls where the spliced table and the comparison plot go.
type Output struct {
	Path           string `toml:"path"`
	ComparisonPlot bool   `toml:"comparison_plot"`
	PlotPath       string `toml:"plot_path"`
}

// Composition is the requested hydrogen and metal mass fraction pair.
type Composition struct {
	X float64 `toml:"x"`
	Z float64 `toml:"z"`
}

// Splice configures the temperature boundary between the two sources.
type Splice struct {
	Temperature    float64 `toml:"temperature"`
	MinTemperature float64 `toml:"min_temperature"`
	MaxTemperature float64 `toml:"max_temperature"`
	Sentinel       float64 `toml:"sentinel"`
	ProgressEvery  int     `toml:"progress_every"`
}

// Oracle configures the external high-temperature interpolation program.
type Oracle struct {
	Binary         string `toml:"binary"`
	Dir            string `toml:"dir"`
	BuildCommand   string `toml:"build_command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache configures the persistent oracle response cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for a splice run.
type Config struct {
	Inputs      Inputs      `toml:"inputs"`
	Output      Output      `toml:"output"`
	Composition Composition `toml:"composition"`
	Splice      Splice      `toml:"splice"`
	Oracle      Oracle      `toml:"oracle"`
	Cache       Cache       `toml:"cache"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates and parses a configuration file and normalizes the result.
// Validation is left to the caller so command-line overrides can be applied
// first. A missing file is not an error; defaults are returned instead.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// OracleTimeout returns the per-call oracle timeout.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// OracleBinaryPath resolves the oracle binary the way the process runner
// sees it: bare names are looked up on PATH, relative paths are taken from
// oracle.dir.
func (c *Config) OracleBinaryPath() string {
	binary := c.Oracle.Binary
	if binary == "" || filepath.IsAbs(binary) || !strings.ContainsRune(binary, filepath.Separator) {
		return binary
	}
	return filepath.Join(c.Oracle.Dir, binary)
}

// LockPath returns the advisory lock file guarding the output table.
func (c *Config) LockPath() string {
	return c.Output.Path + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"opacsplice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose every path lives under a per-test temp
// directory. The oracle build step is disabled unless an option sets it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Inputs.OPALTable = filepath.Join(base, "data", "opal_opac.dat")
	cfgVal.Inputs.LA08Table = filepath.Join(base, "data", "la08_opac.dat")
	cfgVal.Inputs.LA08Sets = filepath.Join(base, "data", "la08_sets.dat")
	cfgVal.Output.Path = filepath.Join(base, "out", "spliced.dat")
	cfgVal.Output.PlotPath = filepath.Join(base, "out", "comparison.png")
	cfgVal.Oracle.Dir = filepath.Join(base, "oracle")
	cfgVal.Oracle.BuildCommand = ""
	cfgVal.Oracle.TimeoutSeconds = 5
	cfgVal.Cache.Path = filepath.Join(base, "cache", "oracle.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithComposition sets the requested (X, Z) pair.
func WithComposition(x, z float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Composition.X = x
		b.cfg.Composition.Z = z
	}
}

// WithSpliceTemperature sets the splice logT.
func WithSpliceTemperature(logT float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Splice.Temperature = logT
	}
}

// WithOracleScript installs script as the oracle executable in the oracle
// working directory.
func WithOracleScript(script string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Oracle.Binary = "./opal"
		WriteScript(b.t, filepath.Join(b.cfg.Oracle.Dir, "opal"), script)
	}
}

// WithCache enables the oracle response cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}
		if t, ok := b.t.(*testing.T); ok {
			t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
			return
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Output.Path))
}

package preflight

import (
	"errors"
	"fmt"

	"opacsplice/internal/config"
	"opacsplice/internal/opacity"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config: every input
// table readable, the output directory writable, and the plot directory
// writable when plotting is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckFileReadable("OPAL table", cfg.Inputs.OPALTable),
		CheckFileReadable("LA08 table", cfg.Inputs.LA08Table),
		CheckFileReadable("LA08 sets", cfg.Inputs.LA08Sets),
		CheckOutputDirectory("Output directory", cfg.Output.Path),
	}
	if cfg.Output.ComparisonPlot {
		results = append(results, CheckOutputDirectory("Plot directory", cfg.Output.PlotPath))
	}
	if cfg.Oracle.BuildCommand != "" {
		results = append(results, CheckDirectoryAccess("Oracle directory", cfg.Oracle.Dir))
	}
	return results
}

// Failures converts failed results into a single ErrFormat error, or nil
// when every check passed.
func Failures(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Passed {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
	}
	if len(errs) == 0 {
		return nil
	}
	return opacity.Wrap(opacity.ErrFormat, "preflight", "check", "", errors.Join(errs...))
}

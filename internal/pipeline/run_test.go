package pipeline_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"opacsplice/internal/config"
	"opacsplice/internal/opacity"
	"opacsplice/internal/oracle"
	"opacsplice/internal/pipeline"
	"opacsplice/internal/tablefile"
	"opacsplice/internal/testsupport"
)

var (
	highLogT = []float64{3.75, 3.8, 3.85, 3.9}
	lowLogT  = []float64{3.6, 3.7, 3.75, 3.8}
)

func writeInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	opalTables := make([]testsupport.OPALTable, 2)
	for n := range opalTables {
		rows := make([][]float64, len(highLogT))
		for i, logT := range highLogT {
			rows[i] = []float64{logT, 1, 2, 3}
		}
		opalTables[n] = testsupport.OPALTable{X: 0.7, Y: 0.28, Z: 0.02, LogR: []float64{-8, -7, -6}, Rows: rows}
	}
	testsupport.WriteOPAL(t, cfg.Inputs.OPALTable, testsupport.SmallOPALFormat, opalTables)

	la08Tables := []testsupport.LA08Table{
		{X: 0.5, Y: 0.48, Z: 0.02},
		{X: 0.7, Y: 0.28, Z: 0.02},
	}
	for n := range la08Tables {
		la08Tables[n].LogT = lowLogT
		la08Tables[n].Values = make([][]float64, len(lowLogT))
		for i := range lowLogT {
			base := float64(100*n + 10*i)
			la08Tables[n].Values[i] = []float64{base + 1, base + 2, base + 3}
		}
	}
	testsupport.WriteLA08(t, cfg.Inputs.LA08Table, cfg.Inputs.LA08Sets, la08Tables)
}

func requireNoLockFile(t *testing.T, cfg *config.Config) {
	t.Helper()
	if _, err := os.Stat(cfg.LockPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected lock file to be removed, stat err = %v", err)
	}
}

func runOptions() pipeline.Options {
	return pipeline.Options{
		OPALFormat: testsupport.SmallOPALFormat,
		LA08Format: testsupport.SmallLA08Format,
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOracleScript(testsupport.SumOracleScript),
		testsupport.WithCache(),
	)
	writeInputs(t, cfg)

	summary, err := pipeline.Run(context.Background(), cfg, runOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.TableIndex != 1 {
		t.Fatalf("expected second low-temperature table, got %d", summary.TableIndex)
	}
	if summary.Rows != 6 || summary.SpliceRow != 4 {
		t.Fatalf("unexpected shape: rows=%d splice_row=%d", summary.Rows, summary.SpliceRow)
	}
	if summary.OracleHits != 9 || summary.Sentinels != 0 {
		t.Fatalf("unexpected oracle counts: hits=%d sentinels=%d", summary.OracleHits, summary.Sentinels)
	}
	if summary.Cache == nil || summary.Cache.Misses != 9 || summary.Cache.Hits != 0 {
		t.Fatalf("unexpected cache counters on first run: %+v", summary.Cache)
	}

	grid, err := tablefile.Read(cfg.Output.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	logT := grid.LogT()
	logR := grid.LogR()
	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			want := float64(100 + 10*(row-1) + col)
			if got := grid.At(row, col); got != want {
				t.Fatalf("low cell (%d,%d) = %g, want %g", row, col, got, want)
			}
		}
	}
	for row := 4; row <= 6; row++ {
		for col := 1; col <= 3; col++ {
			want := logT[row-1] + logR[col-1]
			if got := grid.At(row, col); math.Abs(got-want) > 1e-3 {
				t.Fatalf("oracle cell (%d,%d) = %g, want %g", row, col, got, want)
			}
		}
	}

	again, err := pipeline.Run(context.Background(), cfg, runOptions())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Cache == nil || again.Cache.Hits != 9 || again.Cache.Misses != 0 {
		t.Fatalf("expected every point from cache on second run, got %+v", again.Cache)
	}
	if again.RunID == summary.RunID {
		t.Fatal("run ids should differ between runs")
	}
	requireNoLockFile(t, cfg)
}

func TestRunCacheIsScopedToOracleProgram(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOracleScript(testsupport.SumOracleScript),
		testsupport.WithCache(),
	)
	writeInputs(t, cfg)

	if _, err := pipeline.Run(context.Background(), cfg, runOptions()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	program := cfg.OracleBinaryPath()
	testsupport.WriteScript(t, program, testsupport.NaNOracleScript)
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(program, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	summary, err := pipeline.Run(context.Background(), cfg, runOptions())
	if err != nil {
		t.Fatalf("Run with replaced oracle: %v", err)
	}
	if summary.Cache == nil || summary.Cache.Hits != 0 || summary.Cache.Misses != 9 {
		t.Fatalf("replaced oracle must not reuse cached answers, got %+v", summary.Cache)
	}
	if summary.Sentinels != 9 {
		t.Fatalf("expected the replaced oracle's answers (all sentinels), got %d sentinels", summary.Sentinels)
	}
}

func TestRunMissingInputWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOracleScript(testsupport.SumOracleScript))

	_, err := pipeline.Run(context.Background(), cfg, runOptions())
	if !errors.Is(err, opacity.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Output.Path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output, stat err = %v", statErr)
	}
}

func TestRunNoMatchingComposition(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOracleScript(testsupport.SumOracleScript),
		testsupport.WithComposition(0.99, 0),
	)
	writeInputs(t, cfg)

	_, err := pipeline.Run(context.Background(), cfg, runOptions())
	if !errors.Is(err, opacity.ErrNoMatchingMassFraction) {
		t.Fatalf("expected ErrNoMatchingMassFraction, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Output.Path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output, stat err = %v", statErr)
	}
	requireNoLockFile(t, cfg)
}

func TestRunInvalidSpliceKeepsExistingOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOracleScript(testsupport.SumOracleScript),
		testsupport.WithSpliceTemperature(3.65),
	)
	writeInputs(t, cfg)
	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Output.Path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := pipeline.Run(context.Background(), cfg, runOptions())
	if !errors.Is(err, opacity.ErrInvalidSpliceTemperature) {
		t.Fatalf("expected ErrInvalidSpliceTemperature, got %v", err)
	}
	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Fatalf("existing output was modified: %q", data)
	}
}

func TestRunInjectedOracleSentinels(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeInputs(t, cfg)

	opts := runOptions()
	opts.Oracle = oracle.Func(func(context.Context, oracle.Query) (float64, error) {
		return math.NaN(), nil
	})
	summary, err := pipeline.Run(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Sentinels != 9 || summary.OracleHits != 0 {
		t.Fatalf("expected every oracle cell to be a sentinel, got hits=%d sentinels=%d", summary.OracleHits, summary.Sentinels)
	}
	grid, err := tablefile.Read(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got := grid.At(6, 3); got != 9.999 {
		t.Fatalf("expected sentinel in last cell, got %g", got)
	}
}

func TestRunMissingOracleBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeInputs(t, cfg)

	if _, err := pipeline.Run(context.Background(), cfg, runOptions()); err == nil {
		t.Fatal("expected error for missing oracle binary")
	}
	if _, statErr := os.Stat(cfg.Output.Path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output, stat err = %v", statErr)
	}
}

func TestRunBuildFailureIsNotFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOracleScript(testsupport.SumOracleScript))
	cfg.Oracle.BuildCommand = "false"
	writeInputs(t, cfg)

	if _, err := pipeline.Run(context.Background(), cfg, runOptions()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunPlotFailureIsNotFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOracleScript(testsupport.SumOracleScript))
	cfg.Output.ComparisonPlot = true
	writeInputs(t, cfg)

	// The fixture logR axis does not contain the plotted values.
	summary, err := pipeline.Run(context.Background(), cfg, runOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.PlotPath != "" {
		t.Fatalf("expected no plot, got %s", summary.PlotPath)
	}
	if _, err := os.Stat(cfg.Output.Path); err != nil {
		t.Fatalf("expected output table: %v", err)
	}
}

func TestRunLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOracleScript(testsupport.SumOracleScript))
	writeInputs(t, cfg)
	if err := os.MkdirAll(filepath.Dir(cfg.LockPath()), 0o755); err != nil {
		t.Fatal(err)
	}

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = pipeline.Run(context.Background(), cfg, runOptions())
	if !errors.Is(err, pipeline.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeInputs(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	opts := runOptions()
	opts.Oracle = oracle.Func(func(ctx context.Context, _ oracle.Query) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 1, nil
	})

	_, err := pipeline.Run(ctx, cfg, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Output.Path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output, stat err = %v", statErr)
	}
}

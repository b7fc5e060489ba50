package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"opacsplice/internal/opacity"
	"opacsplice/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "table.dat")
	if err := os.WriteFile(f, []byte("1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("table", f); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckFileReadable("table", filepath.Join(dir, "missing.dat")); r.Passed {
		t.Fatal("expected failure for missing file")
	}
	if r := CheckFileReadable("table", dir); r.Passed {
		t.Fatal("expected failure for directory")
	}
}

func TestCheckOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	if r := CheckOutputDirectory("out", filepath.Join(dir, "a", "b", "table.dat")); !r.Passed {
		t.Fatalf("missing parents under a writable dir should pass: %s", r.Detail)
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckOutputDirectory("out", filepath.Join(blocker, "table.dat")); r.Passed {
		t.Fatal("expected failure when parent is a file")
	}
	if r := CheckOutputDirectory("out", ""); r.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestRunAllAndFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	err := Failures(results)
	if !errors.Is(err, opacity.ErrFormat) {
		t.Fatalf("expected ErrFormat for missing inputs, got %v", err)
	}
	if !strings.Contains(err.Error(), "OPAL table") {
		t.Fatalf("expected failing check name in error, got %v", err)
	}

	for _, path := range []string{cfg.Inputs.OPALTable, cfg.Inputs.LA08Table, cfg.Inputs.LA08Sets} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := Failures(RunAll(cfg)); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}
}

func TestRunAllIncludesPlotDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.ComparisonPlot = true
	if got := len(RunAll(cfg)); got != 5 {
		t.Fatalf("expected 5 results with plotting enabled, got %d", got)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOracleScript(testsupport.SumOracleScript))
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected only the oracle requirement, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected oracle script to be available: %s", statuses[0].Detail)
	}

	cfg.Oracle.Binary = "./absent"
	cfg.Oracle.BuildCommand = "make"
	statuses = CheckSystemDeps(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected oracle and build tool, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected missing oracle to be unavailable")
	}
	if !statuses[1].Optional {
		t.Fatal("expected build tool to be optional")
	}
}

func TestCheckSystemDepsFindsBuildToolOnPath(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOracleScript(testsupport.SumOracleScript),
		testsupport.WithStubbedBinaries("opacbuild"),
	)
	cfg.Oracle.BuildCommand = "opacbuild -j2"
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected oracle and build tool, got %d", len(statuses))
	}
	if !statuses[1].Available {
		t.Fatalf("expected stubbed build tool to be found: %s", statuses[1].Detail)
	}
}

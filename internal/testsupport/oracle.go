package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SumOracleScript prints log10(T) + log10(R) for "T6 R X Z" arguments, so a
// spliced cell can be checked against its own row and column headers.
const SumOracleScript = `#!/bin/sh
awk -v t6="$1" -v r="$2" 'BEGIN { printf "%.12g\n", log(t6 * 1e6) / log(10) + log(r) / log(10) }'
`

// NaNOracleScript reports "nan" for every point.
const NaNOracleScript = "#!/bin/sh\necho nan\n"

// RangeMissOracleScript mimics the interpolation program's out-of-range
// diagnostic, which is not a number.
const RangeMissOracleScript = "#!/bin/sh\necho ' OUT OF RANGE'\nexit 0\n"

// SleepOracleScript never answers within a short timeout.
const SleepOracleScript = "#!/bin/sh\nsleep 5\necho 1.0\n"

// WriteScript writes an executable shell script to path.
func WriteScript(t testing.TB, path, script string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}

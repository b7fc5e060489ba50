package splice_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"opacsplice/internal/opacity"
	"opacsplice/internal/opal"
	"opacsplice/internal/oracle"
	"opacsplice/internal/splice"
)

var (
	lowLogT  = []float64{3.2, 3.4, 3.6, 3.7, 3.75, 3.8}
	highLogT = []float64{3.75, 3.8, 3.85, 3.9, 4.0}
	testLogR = opacity.AxisSpec{Min: -2, Max: 0, Step: 1}
)

func lowGrid(t *testing.T) *opacity.Grid {
	t.Helper()
	logR, err := testLogR.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	g, err := opacity.NewGridWithAxes(lowLogT, logR)
	if err != nil {
		t.Fatalf("NewGridWithAxes: %v", err)
	}
	for row := 1; row < g.Rows(); row++ {
		for col := 1; col < g.Cols(); col++ {
			g.Set(row, col, float64(row*10+col))
		}
	}
	return g
}

func highSet(t *testing.T) *opal.TableSet {
	t.Helper()
	g, err := opacity.NewGridWithAxes(highLogT, []float64{-8, -7})
	if err != nil {
		t.Fatalf("NewGridWithAxes: %v", err)
	}
	return &opal.TableSet{Tables: []opal.Table{{Grid: g}}}
}

// sumOracle answers logT + logR, recovered from the query arguments.
func sumOracle() oracle.Oracle {
	return oracle.Func(func(_ context.Context, q oracle.Query) (float64, error) {
		return math.Log10(q.T6*1e6) + math.Log10(q.R), nil
	})
}

func options(spliceT float64) splice.Options {
	opts := splice.DefaultOptions(spliceT, 0.7, 0.02)
	opts.LogR = testLogR
	return opts
}

func TestSpliceRoundTrip(t *testing.T) {
	low := lowGrid(t)
	var progress [][2]int
	opts := options(3.8)
	opts.Progress = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	result, err := splice.New(sumOracle(), nil).Splice(context.Background(), low, highSet(t), opts)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}

	grid := result.Grid
	wantAxis := []float64{3.2, 3.4, 3.6, 3.7, 3.75, 3.8, 3.85, 3.9, 4.0}
	if diff := cmp.Diff(wantAxis, grid.LogT()); diff != "" {
		t.Fatalf("merged axis mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{-2, -1, 0}, grid.LogR()); diff != "" {
		t.Fatalf("logR mismatch (-want +got):\n%s", diff)
	}
	if result.SpliceRow != 6 {
		t.Fatalf("SpliceRow = %d, want 6", result.SpliceRow)
	}

	for row := 1; row < grid.Rows(); row++ {
		logT := grid.At(row, 0)
		for col := 1; col < grid.Cols(); col++ {
			got := grid.At(row, col)
			if logT < 3.8 {
				continue
			}
			want := logT + grid.At(0, col)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("cell (%d,%d) = %v, want %v", row, col, got, want)
			}
		}
	}
	if result.OracleHits != 4*3 || result.Sentinels != 0 {
		t.Fatalf("unexpected counts hits=%d sentinels=%d", result.OracleHits, result.Sentinels)
	}
	if diff := cmp.Diff([][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, progress); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestSpliceBoundaryInvariant(t *testing.T) {
	low := lowGrid(t)
	result, err := splice.New(sumOracle(), nil).Splice(context.Background(), low, highSet(t), options(3.7))
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	grid := result.Grid
	for row := 1; row < grid.Rows(); row++ {
		logT := grid.At(row, 0)
		if logT >= 3.7 {
			if row < result.SpliceRow {
				t.Fatalf("row %d (logT %v) should be oracle-sourced", row, logT)
			}
			continue
		}
		src, ok := low.RowForLogT(logT)
		if !ok {
			t.Fatalf("low table lacks logT %v", logT)
		}
		if diff := cmp.Diff(low.Values(src), grid.Values(row)); diff != "" {
			t.Fatalf("row %d differs from low table (-want +got):\n%s", row, diff)
		}
	}
}

func TestSpliceSentinelForMissesAndNaN(t *testing.T) {
	calls := 0
	o := oracle.Func(func(_ context.Context, q oracle.Query) (float64, error) {
		calls++
		switch calls % 3 {
		case 0:
			return math.NaN(), nil
		case 1:
			return 0, oracle.ErrRangeMiss
		default:
			return 1.5, nil
		}
	})
	result, err := splice.New(o, nil).Splice(context.Background(), lowGrid(t), highSet(t), options(3.8))
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	grid := result.Grid
	for row := result.SpliceRow; row < grid.Rows(); row++ {
		for col := 1; col < grid.Cols(); col++ {
			v := grid.At(row, col)
			if v != splice.DefaultSentinel && v != 1.5 {
				t.Fatalf("cell (%d,%d) = %v, want oracle value or sentinel", row, col, v)
			}
		}
	}
	if result.Sentinels != 8 || result.OracleHits != 4 {
		t.Fatalf("unexpected counts hits=%d sentinels=%d", result.OracleHits, result.Sentinels)
	}
}

func TestSpliceAllNaNOracle(t *testing.T) {
	nan := oracle.Func(func(context.Context, oracle.Query) (float64, error) { return math.NaN(), nil })
	result, err := splice.New(nan, nil).Splice(context.Background(), lowGrid(t), highSet(t), options(3.8))
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	for row := result.SpliceRow; row < result.Grid.Rows(); row++ {
		for _, v := range result.Grid.Values(row) {
			if v != 9.999 {
				t.Fatalf("row %d holds %v, want sentinel", row, v)
			}
		}
	}
}

func TestSpliceRejectsInvalidTemperature(t *testing.T) {
	tests := []struct {
		name    string
		spliceT float64
	}{
		{"below band", 3.5},
		{"above band", 4.0},
		{"not on merged axis", 3.65},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := splice.New(sumOracle(), nil).Splice(context.Background(), lowGrid(t), highSet(t), options(tt.spliceT))
			if !errors.Is(err, opacity.ErrInvalidSpliceTemperature) {
				t.Fatalf("expected ErrInvalidSpliceTemperature, got %v", err)
			}
		})
	}
}

func TestSpliceRejectsLowTableGapBelowSplicePoint(t *testing.T) {
	// 3.75 comes from the high axis only, so splicing at 3.8 would need it
	// from the low table.
	logR, _ := testLogR.Values()
	low, err := opacity.NewGridWithAxes([]float64{3.2, 3.4, 3.6, 3.8}, logR)
	if err != nil {
		t.Fatalf("NewGridWithAxes: %v", err)
	}
	_, err = splice.New(sumOracle(), nil).Splice(context.Background(), low, highSet(t), options(3.8))
	if !errors.Is(err, opacity.ErrInvalidSpliceTemperature) {
		t.Fatalf("expected ErrInvalidSpliceTemperature, got %v", err)
	}
}

func TestSpliceRejectsNarrowLowTable(t *testing.T) {
	opts := options(3.8)
	opts.LogR = splice.DefaultLogR
	_, err := splice.New(sumOracle(), nil).Splice(context.Background(), lowGrid(t), highSet(t), opts)
	if !errors.Is(err, opacity.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestSpliceStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	o := oracle.Func(func(context.Context, oracle.Query) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 1, nil
	})
	_, err := splice.New(o, nil).Splice(ctx, lowGrid(t), highSet(t), options(3.8))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected splice to stop after cancellation, got %d calls", calls)
	}
}

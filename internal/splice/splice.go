package splice

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"opacsplice/internal/logging"
	"opacsplice/internal/opacity"
	"opacsplice/internal/opal"
	"opacsplice/internal/oracle"
)

const component = "splice"

// Defaults of the published tables.
const (
	DefaultMinSpliceLogT = 3.6
	DefaultMaxSpliceLogT = 3.9
	DefaultSentinel      = 9.999
)

// DefaultLogR is the output logR axis: -7.0 to 1.0 in steps of 0.5.
var DefaultLogR = opacity.AxisSpec{Min: -7, Max: 1, Step: 0.5}

// Options configures one splice.
type Options struct {
	SpliceLogT float64
	X          float64
	Z          float64
	// MinSpliceLogT and MaxSpliceLogT bound the accepted splice temperature
	// inclusively. Both zero selects the defaults.
	MinSpliceLogT float64
	MaxSpliceLogT float64
	Sentinel      float64
	LogR          opacity.AxisSpec
	// Progress is called after each oracle-filled row with the number of
	// rows done and the total.
	Progress func(done, total int)
}

// DefaultOptions returns options for the published tables at the given
// splice temperature and composition.
func DefaultOptions(spliceLogT, x, z float64) Options {
	return Options{
		SpliceLogT:    spliceLogT,
		X:             x,
		Z:             z,
		MinSpliceLogT: DefaultMinSpliceLogT,
		MaxSpliceLogT: DefaultMaxSpliceLogT,
		Sentinel:      DefaultSentinel,
		LogR:          DefaultLogR,
	}
}

// Result is the spliced table.
type Result struct {
	Grid *opacity.Grid
	// SpliceRow is the first grid row filled by the oracle.
	SpliceRow  int
	OracleHits int
	Sentinels  int
}

// Splicer fills the high-temperature region through an Oracle.
type Splicer struct {
	oracle oracle.Oracle
	logger *slog.Logger
}

// New constructs a Splicer.
func New(o oracle.Oracle, logger *slog.Logger) *Splicer {
	return &Splicer{oracle: o, logger: logging.NewComponentLogger(logger, component)}
}

// Splice builds the merged table from low (the matched low-temperature
// grid) and high, whose first table supplies the high-temperature logT axis.
func (s *Splicer) Splice(ctx context.Context, low *opacity.Grid, high *opal.TableSet, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	if low == nil || high == nil || high.Len() == 0 {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "splice", "both source tables are required", nil)
	}

	if err := checkBand(opts); err != nil {
		return nil, err
	}
	merged := opacity.MergeAxes(low.LogT(), high.LogT())
	k, ok := opacity.IndexOf(merged, opts.SpliceLogT)
	if !ok {
		return nil, opacity.Wrap(opacity.ErrInvalidSpliceTemperature, component, "splice",
			fmt.Sprintf("logT %v is not on the merged temperature axis", opts.SpliceLogT), nil)
	}

	logR, err := opts.LogR.Values()
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "splice", "logR axis", err)
	}
	if low.NumLogR() < len(logR) {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "splice",
			fmt.Sprintf("low-temperature table has %d logR columns, need %d", low.NumLogR(), len(logR)), nil)
	}
	grid, err := opacity.NewGridWithAxes(merged, logR)
	if err != nil {
		return nil, opacity.Wrap(opacity.ErrFormat, component, "splice", "allocate grid", err)
	}

	if err := copyLowRows(grid, low, k); err != nil {
		return nil, err
	}

	result := &Result{Grid: grid, SpliceRow: k + 1}
	if err := s.fillOracleRows(ctx, result, logR, opts); err != nil {
		return nil, err
	}

	s.logger.Info("table spliced",
		logging.Int("rows", grid.NumLogT()),
		logging.Int("low_rows", k),
		logging.Int("oracle_cells", result.OracleHits),
		logging.Int("sentinel_cells", result.Sentinels),
	)
	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.MinSpliceLogT == 0 && opts.MaxSpliceLogT == 0 {
		opts.MinSpliceLogT = DefaultMinSpliceLogT
		opts.MaxSpliceLogT = DefaultMaxSpliceLogT
	}
	if opts.LogR == (opacity.AxisSpec{}) {
		opts.LogR = DefaultLogR
	}
	return opts
}

func checkBand(opts Options) error {
	t := opts.SpliceLogT
	if math.IsNaN(t) || t < opts.MinSpliceLogT || t > opts.MaxSpliceLogT {
		return opacity.Wrap(opacity.ErrInvalidSpliceTemperature, component, "splice",
			fmt.Sprintf("logT %v outside [%v, %v]", t, opts.MinSpliceLogT, opts.MaxSpliceLogT), nil)
	}
	return nil
}

// copyLowRows fills grid rows 1..k from the low-temperature table, matching
// rows by exact logT.
func copyLowRows(grid, low *opacity.Grid, k int) error {
	for row := 1; row <= k; row++ {
		logT := grid.At(row, 0)
		src, ok := low.RowForLogT(logT)
		if !ok {
			return opacity.Wrap(opacity.ErrInvalidSpliceTemperature, component, "splice",
				fmt.Sprintf("logT %v below the splice point is missing from the low-temperature table", logT), nil)
		}
		for col := 1; col < grid.Cols(); col++ {
			grid.Set(row, col, low.At(src, col))
		}
	}
	return nil
}

func (s *Splicer) fillOracleRows(ctx context.Context, result *Result, logR []float64, opts Options) error {
	grid := result.Grid
	total := grid.Rows() - result.SpliceRow
	for row := result.SpliceRow; row < grid.Rows(); row++ {
		logT := grid.At(row, 0)
		for j, r := range logR {
			q := oracle.NewQuery(logT, r, opts.X, opts.Z)
			v, err := s.oracle.Query(ctx, q)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("splice row %d: %w", row, ctxErr)
			}
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				s.logger.Debug("sentinel substituted",
					logging.Float64("logT", logT),
					logging.Float64("logR", r),
					logging.Int("row", row),
					logging.Int("col", j+1),
					logging.Error(err),
				)
				v = opts.Sentinel
				result.Sentinels++
			} else {
				result.OracleHits++
			}
			grid.Set(row, j+1, v)
		}
		if opts.Progress != nil {
			opts.Progress(row-result.SpliceRow+1, total)
		}
	}
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"opacsplice/internal/compare"
	"opacsplice/internal/config"
	"opacsplice/internal/la08"
	"opacsplice/internal/logging"
	"opacsplice/internal/opacity"
	"opacsplice/internal/opal"
	"opacsplice/internal/oracle"
	"opacsplice/internal/oraclecache"
	"opacsplice/internal/preflight"
	"opacsplice/internal/splice"
	"opacsplice/internal/tablefile"
)

const component = "pipeline"

// ErrLocked reports that another run holds the output lock.
var ErrLocked = errors.New("output locked by another run")

// Options injects collaborators; zero values select the production ones.
type Options struct {
	Logger *slog.Logger
	// Oracle replaces the process-backed oracle entirely.
	Oracle oracle.Oracle
	// Executor runs the build command and the oracle process.
	Executor   oracle.Executor
	OPALFormat opal.Format
	LA08Format la08.Format
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	OutputPath string
	PlotPath   string
	Fractions  opacity.MassFractions
	TableIndex int
	Rows       int
	SpliceRow  int
	OracleHits int
	Sentinels  int
	Cache      *oracle.CacheCounters
	Duration   time.Duration
}

// Run performs one splice described by cfg. cfg must already be validated.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	started := time.Now()
	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))
	log := logging.NewComponentLogger(logger, component)

	if err := preflight.Failures(preflight.RunAll(cfg)); err != nil {
		return nil, err
	}

	unlock, err := acquireLock(cfg.LockPath())
	if err != nil {
		return nil, err
	}
	defer unlock()

	log.Info("splice started",
		logging.Float64("x", cfg.Composition.X),
		logging.Float64("z", cfg.Composition.Z),
		logging.Float64("splice_logt", cfg.Splice.Temperature),
		logging.String("output", cfg.Output.Path),
		logging.Bool("cache", cfg.Cache.Enabled),
		logging.Bool("plot", cfg.Output.ComparisonPlot),
	)

	high, err := opal.Read(cfg.Inputs.OPALTable, opal.Options{Format: opts.OPALFormat, Logger: logger})
	if err != nil {
		return nil, err
	}
	lowSet, err := la08.Read(cfg.Inputs.LA08Table, cfg.Inputs.LA08Sets, la08.Options{Format: opts.LA08Format, Logger: logger})
	if err != nil {
		return nil, err
	}
	idx, err := la08.FindIndex(lowSet, cfg.Composition.X, cfg.Composition.Z)
	if err != nil {
		return nil, err
	}
	low := lowSet.Tables[idx]
	log.Info("low-temperature table selected",
		logging.Int("index", idx),
		logging.String("fractions", low.Fractions.String()),
	)

	orc, cached, closeOracle, err := buildOracle(ctx, cfg, opts, logger, log)
	if err != nil {
		return nil, err
	}
	defer closeOracle()

	sampler := logging.NewProgressSampler(cfg.Splice.ProgressEvery)
	spliceOpts := splice.Options{
		SpliceLogT:    cfg.Splice.Temperature,
		X:             cfg.Composition.X,
		Z:             cfg.Composition.Z,
		MinSpliceLogT: cfg.Splice.MinTemperature,
		MaxSpliceLogT: cfg.Splice.MaxTemperature,
		Sentinel:      cfg.Splice.Sentinel,
		LogR:          lowAxis(opts.LA08Format),
		Progress: func(done, total int) {
			if sampler.ShouldLog(done, total) {
				log.Info("splice progress",
					logging.Int("rows_done", done),
					logging.Int("rows_total", total),
				)
			}
		},
	}
	result, err := splice.New(orc, logger).Splice(ctx, low.Grid, high, spliceOpts)
	if err != nil {
		return nil, err
	}

	if err := tablefile.Write(cfg.Output.Path, result.Grid); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      runID,
		OutputPath: cfg.Output.Path,
		Fractions:  low.Fractions,
		TableIndex: idx,
		Rows:       result.Grid.NumLogT(),
		SpliceRow:  result.SpliceRow,
		OracleHits: result.OracleHits,
		Sentinels:  result.Sentinels,
	}
	if cached != nil {
		counters := cached.Counters()
		summary.Cache = &counters
	}

	if cfg.Output.ComparisonPlot {
		if err := compare.Plot(cfg.Output.PlotPath, result.Grid, low.Grid, compare.Options{}); err != nil {
			logging.WarnWithContext(log, "comparison plot failed", "plot_failed",
				logging.String(logging.FieldErrorHint, "check output.plot_path and that the table covers the plotted logR values"),
				logging.String(logging.FieldImpact, "spliced table was written without a comparison plot"),
				logging.Error(err),
			)
		} else {
			summary.PlotPath = cfg.Output.PlotPath
		}
	}

	summary.Duration = time.Since(started)
	log.Info("splice complete",
		logging.String("output", summary.OutputPath),
		logging.Int("rows", summary.Rows),
		logging.Int("oracle_cells", summary.OracleHits),
		logging.Int("sentinel_cells", summary.Sentinels),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// buildOracle rebuilds the interpolation program, confirms it exists, and
// wraps it with the response cache when enabled. The returned close func is
// always safe to call.
func buildOracle(ctx context.Context, cfg *config.Config, opts Options, logger, log *slog.Logger) (oracle.Oracle, *oracle.Cached, func(), error) {
	noop := func() {}
	orc := opts.Oracle
	if orc == nil {
		if err := oracle.Build(ctx, opts.Executor, cfg.Oracle.Dir, cfg.Oracle.BuildCommand, logger); err != nil {
			if ctx.Err() != nil {
				return nil, nil, noop, ctx.Err()
			}
			logging.WarnWithContext(log, "oracle build failed", "oracle_build_failed",
				logging.String(logging.FieldErrorHint, "run the build command by hand in oracle.dir"),
				logging.String(logging.FieldImpact, "continuing with the existing oracle binary"),
				logging.Error(err),
			)
		}
		for _, status := range preflight.CheckSystemDeps(cfg) {
			if !status.Available && !status.Optional {
				return nil, nil, noop, fmt.Errorf("%s unavailable: %s", strings.ToLower(status.Name), status.Detail)
			}
		}
		var procOpts []oracle.Option
		if opts.Executor != nil {
			procOpts = append(procOpts, oracle.WithExecutor(opts.Executor))
		}
		procOpts = append(procOpts, oracle.WithLogger(logger))
		proc, err := oracle.NewProcess(cfg.Oracle.Binary, cfg.Oracle.Dir, cfg.OracleTimeout(), procOpts...)
		if err != nil {
			return nil, nil, noop, err
		}
		orc = proc
	}

	if !cfg.Cache.Enabled {
		return orc, nil, noop, nil
	}
	store, err := oraclecache.Open(ctx, cfg.Cache.Path)
	if err != nil {
		logging.WarnWithContext(log, "oracle cache unavailable", "oracle_cache_unavailable",
			logging.String(logging.FieldErrorHint, "check cache.path or clear it with 'opacsplice cache clear'"),
			logging.String(logging.FieldImpact, "every point is sent to the oracle"),
			logging.Error(err),
		)
		return orc, nil, noop, nil
	}
	namespace := ""
	if opts.Oracle == nil {
		namespace = oracle.Identity(cfg.OracleBinaryPath())
	}
	cached := oracle.NewCached(orc, store, namespace, logger)
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Debug("close oracle cache", logging.Error(err))
		}
	}
	return cached, cached, closeStore, nil
}

func lowAxis(format la08.Format) opacity.AxisSpec {
	if format == (la08.Format{}) {
		return la08.DefaultFormat.LogR
	}
	return format.LogR
}

// acquireLock takes an exclusive advisory lock next to the output table. The
// returned release func removes the lock file while still holding the lock.
func acquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return func() {
		_ = os.Remove(path)
		_ = lock.Unlock()
	}, nil
}

package oracle_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"opacsplice/internal/oracle"
	"opacsplice/internal/oraclecache"
	"opacsplice/internal/testsupport"
)

func TestCachedStoresValuesAndRangeMisses(t *testing.T) {
	store := testsupport.MustOpenCache(t, filepath.Join(t.TempDir(), "oracle.db"))
	calls := 0
	inner := oracle.Func(func(_ context.Context, q oracle.Query) (float64, error) {
		calls++
		if q.R > 1 {
			return 0, fmt.Errorf("%w: out of table", oracle.ErrRangeMiss)
		}
		return q.T6, nil
	})
	cached := oracle.NewCached(inner, store, "", nil)
	ctx := context.Background()

	inRange := oracle.NewQuery(4, 0, 0.7, 0.02)
	outOfRange := oracle.NewQuery(4, 1, 0.7, 0.02)
	for range 2 {
		v, err := cached.Query(ctx, inRange)
		if err != nil || v != inRange.T6 {
			t.Fatalf("Query = %v, %v", v, err)
		}
		if _, err := cached.Query(ctx, outOfRange); !errors.Is(err, oracle.ErrRangeMiss) {
			t.Fatalf("expected ErrRangeMiss, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", calls)
	}
	counters := cached.Counters()
	if counters.Hits != 2 || counters.Misses != 2 || counters.Errors != 0 {
		t.Fatalf("unexpected counters %+v", counters)
	}
}

func TestCachedSkipsTimeoutsAndProcessFailures(t *testing.T) {
	store := testsupport.MustOpenCache(t, filepath.Join(t.TempDir(), "oracle.db"))
	failures := []error{
		fmt.Errorf("%w: slow: %w", oracle.ErrRangeMiss, context.DeadlineExceeded),
		fmt.Errorf("%w: exit status 1", oracle.ErrProcess),
	}
	calls := 0
	inner := oracle.Func(func(context.Context, oracle.Query) (float64, error) {
		err := failures[calls%len(failures)]
		calls++
		return 0, err
	})
	cached := oracle.NewCached(inner, store, "", nil)
	q := oracle.NewQuery(5, -3, 0.7, 0.02)

	for range 4 {
		if _, err := cached.Query(context.Background(), q); err == nil {
			t.Fatal("expected failure to propagate")
		}
	}
	if calls != 4 {
		t.Fatalf("failures must not be cached, got %d calls", calls)
	}
	if _, ok, _ := store.Get(context.Background(), q.Key()); ok {
		t.Fatal("unexpected cache entry")
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (oraclecache.Entry, bool, error) {
	return oraclecache.Entry{}, false, errors.New("disk gone")
}

func (brokenCache) Put(context.Context, oraclecache.Entry) error {
	return errors.New("disk gone")
}

func TestCachedFallsThroughOnCacheErrors(t *testing.T) {
	inner := oracle.Func(func(context.Context, oracle.Query) (float64, error) { return 1.5, nil })
	cached := oracle.NewCached(inner, brokenCache{}, "", nil)

	v, err := cached.Query(context.Background(), oracle.NewQuery(4, 0, 0.7, 0.02))
	if err != nil || v != 1.5 {
		t.Fatalf("Query = %v, %v", v, err)
	}
	if got := cached.Counters().Errors; got != 2 {
		t.Fatalf("expected read and write errors counted, got %d", got)
	}
}

func TestCachedNamespacesDoNotShareAnswers(t *testing.T) {
	store := testsupport.MustOpenCache(t, filepath.Join(t.TempDir(), "oracle.db"))
	constant := func(v float64) oracle.Oracle {
		return oracle.Func(func(context.Context, oracle.Query) (float64, error) { return v, nil })
	}
	first := oracle.NewCached(constant(1), store, "/opt/opal-a@10:1", nil)
	second := oracle.NewCached(constant(2), store, "/opt/opal-b@10:1", nil)
	q := oracle.NewQuery(4, -3, 0.7, 0.02)
	ctx := context.Background()

	if v, err := first.Query(ctx, q); err != nil || v != 1 {
		t.Fatalf("first Query = %v, %v", v, err)
	}
	if v, err := second.Query(ctx, q); err != nil || v != 2 {
		t.Fatalf("second oracle answered %v (err %v), want its own value 2", v, err)
	}
	if got := second.Counters().Hits; got != 0 {
		t.Fatalf("second oracle hit another namespace's entries %d times", got)
	}
	if v, err := first.Query(ctx, q); err != nil || v != 1 {
		t.Fatalf("first oracle lost its entry: %v, %v", v, err)
	}
}

func TestIdentityChangesWhenProgramChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opal")
	testsupport.WriteScript(t, path, testsupport.SumOracleScript)
	before := oracle.Identity(path)
	if !strings.HasPrefix(before, path+"@") {
		t.Fatalf("Identity = %q, want %s@size:mtime", before, path)
	}
	if again := oracle.Identity(path); again != before {
		t.Fatalf("Identity not stable: %q then %q", before, again)
	}

	testsupport.WriteScript(t, path, testsupport.NaNOracleScript)
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if after := oracle.Identity(path); after == before {
		t.Fatalf("Identity unchanged after rewrite: %q", after)
	}

	missing := filepath.Join(t.TempDir(), "absent")
	if got := oracle.Identity(missing); got != missing {
		t.Fatalf("Identity of missing program = %q, want bare path", got)
	}
}

package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"opacsplice/internal/logging"
	"opacsplice/internal/oraclecache"
)

// Cache is the subset of oraclecache.Store used by Cached.
type Cache interface {
	Get(ctx context.Context, args string) (oraclecache.Entry, bool, error)
	Put(ctx context.Context, entry oraclecache.Entry) error
}

// CacheCounters reports how a Cached oracle resolved its queries.
type CacheCounters struct {
	Hits   int
	Misses int
	Errors int
}

// Cached answers from a persistent cache and falls back to the wrapped
// oracle. Values and range misses are stored; timeouts and process failures
// are not, so they are retried on the next run.
type Cached struct {
	next      Oracle
	cache     Cache
	namespace string
	logger    *slog.Logger
	counters  CacheCounters
}

// NewCached wraps next with cache. Entries are keyed by namespace and the
// query arguments, so oracles with different namespaces never share answers.
// Use Identity to derive the namespace of a program on disk.
func NewCached(next Oracle, cache Cache, namespace string, logger *slog.Logger) *Cached {
	return &Cached{
		next:      next,
		cache:     cache,
		namespace: namespace,
		logger:    logging.NewComponentLogger(logger, component),
	}
}

// Query implements Oracle.
func (c *Cached) Query(ctx context.Context, q Query) (float64, error) {
	key := c.key(q)
	entry, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.counters.Errors++
		c.logger.Debug("oracle cache read failed", logging.String("args", key), logging.Error(err))
	case ok:
		c.counters.Hits++
		if entry.RangeMiss {
			return 0, fmt.Errorf("%w: %s (cached)", ErrRangeMiss, key)
		}
		return entry.Value, nil
	}
	c.counters.Misses++

	v, err := c.next.Query(ctx, q)
	if !cacheable(err) {
		return v, err
	}
	record := oraclecache.Entry{Args: key, Value: v, RangeMiss: err != nil}
	if putErr := c.cache.Put(ctx, record); putErr != nil {
		c.counters.Errors++
		c.logger.Debug("oracle cache write failed", logging.String("args", key), logging.Error(putErr))
	}
	return v, err
}

func (c *Cached) key(q Query) string {
	if c.namespace == "" {
		return q.Key()
	}
	return c.namespace + " " + q.Key()
}

// Counters returns the hit, miss, and error counts so far.
func (c *Cached) Counters() CacheCounters {
	return c.counters
}

func cacheable(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, ErrRangeMiss) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, context.Canceled)
}

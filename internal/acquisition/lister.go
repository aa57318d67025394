package acquisition

import (
	"context"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/cache"
	"github.com/atacama-sky/goes-abi-cli/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// listingSettle is how long after the end of an hour its prefix is treated as complete.
const listingSettle = 30 * time.Minute

// Lister lists bucket prefixes once per run. Concurrent tasks for the same hour share one
// request, and listings of hours that can no longer change are kept on disk.
type Lister struct {
	bucket  Bucket
	group   singleflight.Group
	cache   cache.CacheService[[]string]
	clock   clockwork.Clock
	metrics *observability.Metrics
}

func NewLister(bucket Bucket, c cache.CacheService[[]string], clock clockwork.Clock, metrics *observability.Metrics) *Lister {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Lister{bucket: bucket, cache: c, clock: clock, metrics: metrics}
}

// List returns the keys under prefix. hour is the start of the hour the prefix covers.
func (l *Lister) List(ctx context.Context, prefix string, hour time.Time) ([]string, error) {
	key := ""
	if l.cache != nil {
		key = l.cache.GenerateKey(l.bucket.Name(), prefix)
		if keys, ok := l.cache.Get(key); ok {
			l.count("cache")
			return keys, nil
		}
	}

	v, err, shared := l.group.Do(prefix, func() (interface{}, error) {
		keys, err := l.bucket.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		if l.cache != nil && l.complete(hour) {
			// a failed cache write only costs another listing next run
			_ = l.cache.Set(key, keys)
		}
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.count("shared")
	} else {
		l.count("bucket")
	}
	return v.([]string), nil
}

func (l *Lister) complete(hour time.Time) bool {
	return l.clock.Since(hour.Truncate(time.Hour).Add(time.Hour)) > listingSettle
}

func (l *Lister) count(source string) {
	if l.metrics != nil {
		l.metrics.ListingRequests.WithLabelValues(source).Inc()
	}
}

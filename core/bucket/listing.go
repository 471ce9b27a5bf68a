package bucket

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"bucket-manager/core/metrics"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ListOptions selects which keys a listing returns.
type ListOptions struct {
	Prefix string
	// Delimiter groups keys into common prefixes when Recursive is false.
	// Empty means DefaultDelimiter.
	Delimiter string
	Recursive bool
}

// Listing is a lazy, finite, single-use sequence of object metadata.
// Nothing is requested from the backend until All is ranged over.
type Listing struct {
	svc     *Service
	ctx     context.Context
	opts    ListOptions
	used    atomic.Bool
	dropped atomic.Int64
}

// List prepares a listing of the bucket.
func (s *Service) List(ctx context.Context, opts ListOptions) *Listing {
	if opts.Delimiter == "" {
		opts.Delimiter = s.delimiter
	}
	return &Listing{svc: s, ctx: ctx, opts: opts}
}

// ListAll prepares a recursive listing of the whole bucket.
func (s *Service) ListAll(ctx context.Context) *Listing {
	return s.List(ctx, ListOptions{Recursive: true})
}

// All yields every decodable entry. Entries the backend failed to produce are
// dropped and counted; see Dropped. Ranging a second time yields nothing.
func (l *Listing) All() iter.Seq[ObjectMetadata] {
	return func(yield func(ObjectMetadata) bool) {
		if !l.used.CompareAndSwap(false, true) {
			return
		}

		s := l.svc
		start := time.Now()
		var dropped int64
		defer func() {
			metrics.ObserveOperation(s.qualifier, OpList, listOutcome(l.ctx.Err(), dropped), time.Since(start))
		}()

		// Cancelling stops the backend goroutine when the consumer stops early.
		ctx, cancel := context.WithCancel(l.ctx)
		defer cancel()

		fold := !l.opts.Recursive && l.opts.Delimiter != DefaultDelimiter
		minioOpts := minio.ListObjectsOptions{
			Prefix:    l.opts.Prefix,
			Recursive: l.opts.Recursive || fold,
		}

		var seen map[string]struct{}
		if fold {
			seen = make(map[string]struct{})
		}

		for info := range s.client.ListObjects(ctx, s.bucket, minioOpts) {
			if info.Err != nil {
				l.dropped.Add(1)
				dropped++
				metrics.IncListingDropped(s.qualifier)
				s.logger.Debug("Dropping undecodable listing entry", zap.String("key", info.Key), zap.Error(info.Err))
				continue
			}

			md := metadataFromInfo(info)
			if fold {
				p, ok := commonPrefix(info.Key, l.opts.Prefix, l.opts.Delimiter)
				if ok {
					if _, dup := seen[p]; dup {
						continue
					}
					seen[p] = struct{}{}
					md = ObjectMetadata{Key: p, IsPrefix: true}
				}
			}

			if !yield(md) {
				return
			}
		}
	}
}

// Collect materializes the listing.
func (l *Listing) Collect() []ObjectMetadata {
	return slices.Collect(l.All())
}

// Dropped returns how many entries were skipped so far.
func (l *Listing) Dropped() int {
	return int(l.dropped.Load())
}

// listOutcome labels a finished listing run. parentErr is the caller's context
// error; stopping the range early is not a failure.
func listOutcome(parentErr error, dropped int64) string {
	switch {
	case parentErr != nil:
		return metrics.OutcomeCancelled
	case dropped > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeOK
	}
}

// commonPrefix folds key into prefix + segment + delimiter when the part after
// prefix contains the delimiter.
func commonPrefix(key, prefix, delimiter string) (string, bool) {
	if delimiter == "" || !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	i := strings.Index(rest, delimiter)
	if i < 0 {
		return "", false
	}
	return prefix + rest[:i+len(delimiter)], true
}

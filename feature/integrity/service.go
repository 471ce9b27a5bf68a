package integrity

import (
	"context"
	"fmt"
	"time"

	"bucket-manager/core/bucket"
	"bucket-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many buckets are checked at once.
const DefaultConcurrency = 4

// Status values reported per bucket and overall.
const (
	StatusOK       = "ok"
	StatusMissing  = "missing"
	StatusError    = "error"
	StatusDegraded = "degraded"
)

// BucketReport is the result of checking one bucket.
type BucketReport struct {
	Qualifier string `json:"qualifier"`
	Bucket    string `json:"bucket"`
	Status    string `json:"status"`
	Exists    bool   `json:"exists"`
	Listable  bool   `json:"listable"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Report aggregates the bucket checks.
type Report struct {
	Status  string         `json:"status"`
	Buckets []BucketReport `json:"buckets"`
}

// Service handles integrity checks.
type Service struct {
	registry    *bucket.Registry
	logger      *zap.Logger
	concurrency int
}

// NewService creates a new integrity service.
func NewService(registry *bucket.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: registry, logger: logger, concurrency: DefaultConcurrency}
}

// SetConcurrency changes the fan-out limit. Values below one are ignored.
func (s *Service) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// CheckAll checks every registered bucket. Individual failures are reported,
// never returned; only context cancellation fails the whole run.
func (s *Service) CheckAll(ctx context.Context) (Report, error) {
	qualifiers := s.registry.Qualifiers()
	reports := make([]BucketReport, len(qualifiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, q := range qualifiers {
		svc, _ := s.registry.Lookup(q)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.checkBucket(gctx, svc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Status: StatusOK, Buckets: reports}
	for _, r := range reports {
		if r.Status != StatusOK {
			report.Status = StatusDegraded
			break
		}
	}
	return report, nil
}

// Check checks a single bucket by qualifier.
func (s *Service) Check(ctx context.Context, qualifier string) (BucketReport, error) {
	svc, ok := s.registry.Lookup(qualifier)
	if !ok {
		return BucketReport{}, fmt.Errorf("unknown bucket %q", qualifier)
	}
	return s.checkBucket(ctx, svc), nil
}

func (s *Service) checkBucket(ctx context.Context, svc *bucket.Service) BucketReport {
	start := time.Now()
	report := BucketReport{Qualifier: svc.Qualifier(), Bucket: svc.Bucket()}
	client := svc.Client()

	exists, err := client.BucketExists(ctx, svc.Bucket())
	switch {
	case err != nil:
		report.Status = StatusError
		report.Error = err.Error()
	case !exists:
		report.Status = StatusMissing
	default:
		report.Exists = true
		if err := probeList(ctx, client, svc.Bucket()); err != nil {
			report.Status = StatusError
			report.Error = fmt.Sprintf("list failed: %v", err)
		} else {
			report.Listable = true
			report.Status = StatusOK
		}
	}
	report.LatencyMs = time.Since(start).Milliseconds()

	if report.Status != StatusOK {
		s.logger.Warn("Bucket check failed",
			zap.String("qualifier", report.Qualifier),
			zap.String("bucket", report.Bucket),
			zap.String("status", report.Status),
			zap.String("error", report.Error),
		)
	}
	return report
}

// probeList reads at most one listing entry to confirm list permission.
func probeList(ctx context.Context, client storage.Client, bucketName string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	info, ok := <-client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{MaxKeys: 1})
	if !ok {
		return nil
	}
	return info.Err
}

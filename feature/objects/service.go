package objects

import (
	"errors"
	"fmt"

	"bucket-manager/core/bucket"

	"go.uber.org/zap"
)

// PrimaryAlias addresses the primary bucket in place of a qualifier.
const PrimaryAlias = "_primary"

// ErrUnknownBucket is returned when no bucket is registered under a qualifier.
var ErrUnknownBucket = errors.New("unknown bucket")

// BucketInfo describes a registered bucket.
type BucketInfo struct {
	Qualifier string `json:"qualifier"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Primary   bool   `json:"primary"`
}

// Service resolves qualifiers against the bucket registry.
type Service struct {
	registry *bucket.Registry
	logger   *zap.Logger
}

// NewService creates a new objects service.
func NewService(registry *bucket.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: registry, logger: logger}
}

// Resolve returns the bucket registered under qualifier. PrimaryAlias selects the primary.
func (s *Service) Resolve(qualifier string) (*bucket.Service, error) {
	if qualifier == PrimaryAlias {
		if svc, ok := s.registry.Primary(); ok {
			return svc, nil
		}
		return nil, fmt.Errorf("%w: no primary bucket configured", ErrUnknownBucket)
	}
	if svc, ok := s.registry.Lookup(qualifier); ok {
		return svc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, qualifier)
}

// Buckets lists the registered buckets in configuration order.
func (s *Service) Buckets() []BucketInfo {
	primary, _ := s.registry.Primary()
	qualifiers := s.registry.Qualifiers()

	out := make([]BucketInfo, 0, len(qualifiers))
	for _, q := range qualifiers {
		svc, _ := s.registry.Lookup(q)
		out = append(out, BucketInfo{
			Qualifier: q,
			Bucket:    svc.Bucket(),
			Region:    svc.Region(),
			Primary:   svc == primary,
		})
	}
	return out
}

package bucket

import (
	"fmt"

	"bucket-manager/core/metrics"
	"bucket-manager/core/storage"

	"go.uber.org/zap"
)

// ClientFactory creates the backend client for one bucket.
type ClientFactory func(cfg storage.Config) (storage.Client, error)

// Registry maps qualifiers to bucket services. It is built once by Build and is
// read-only afterwards, so lookups need no locking.
type Registry struct {
	services   map[string]*Service
	qualifiers []string
	primary    *Service
}

type buildOptions struct {
	logger  *zap.Logger
	factory ClientFactory
}

// Option configures Build.
type Option func(*buildOptions)

// WithLogger sets the logger used during construction and by every service.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithClientFactory replaces storage.NewClient, mainly for tests.
func WithClientFactory(f ClientFactory) Option {
	return func(o *buildOptions) { o.factory = f }
}

// Build validates descriptors, resolves their credentials and constructs one
// service per descriptor. It is all-or-nothing: on any error no registry is returned.
func Build(descriptors []Descriptor, opts ...Option) (*Registry, error) {
	o := buildOptions{logger: zap.NewNop(), factory: storage.NewClient}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	normalized := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		normalized[i] = d.Normalize()
	}

	if err := Validate(normalized); err != nil {
		o.logger.Error("Invalid bucket configuration", zap.Error(err))
		return nil, err
	}

	// Resolve every credential pair before creating any client.
	creds := make([]Credentials, len(normalized))
	for i, d := range normalized {
		c, err := ResolveCredentials(d, o.logger)
		if err != nil {
			o.logger.Error("Credentials not found", zap.String("qualifier", d.Qualifier), zap.Error(err))
			return nil, err
		}
		creds[i] = c
	}

	r := &Registry{
		services:   make(map[string]*Service, len(normalized)),
		qualifiers: make([]string, 0, len(normalized)),
	}

	for i, d := range normalized {
		client, err := o.factory(storage.Config{
			Endpoint:       d.Endpoint,
			UseSSL:         d.UseSSL,
			AccessKey:      creds[i].AccessKey,
			SecretKey:      creds[i].SecretKey,
			Region:         d.Region,
			TimeoutSeconds: d.TimeoutSeconds,
		})
		if err != nil {
			return nil, &ConfigError{
				Index:     i,
				Qualifier: d.Qualifier,
				Field:     "endpoint",
				Reason:    fmt.Sprintf("failed to create client: %v", err),
			}
		}

		svc := NewService(d, client, o.logger)
		r.services[d.Qualifier] = svc
		r.qualifiers = append(r.qualifiers, d.Qualifier)
		if d.Primary {
			r.primary = svc
		}

		o.logger.Info("Registered bucket",
			zap.String("qualifier", d.Qualifier),
			zap.String("bucket", d.Bucket),
			zap.String("endpoint", d.Endpoint),
			zap.Bool("primary", d.Primary),
		)
	}

	metrics.SetRegisteredBuckets(len(r.services))
	return r, nil
}

// Lookup returns the service registered under qualifier.
func (r *Registry) Lookup(qualifier string) (*Service, bool) {
	svc, ok := r.services[qualifier]
	return svc, ok
}

// Primary returns the service whose descriptor was marked primary, if any.
func (r *Registry) Primary() (*Service, bool) {
	return r.primary, r.primary != nil
}

// Qualifiers returns the registered qualifiers in configuration order.
func (r *Registry) Qualifiers() []string {
	out := make([]string, len(r.qualifiers))
	copy(out, r.qualifiers)
	return out
}

// Len returns the number of registered buckets.
func (r *Registry) Len() int {
	return len(r.services)
}

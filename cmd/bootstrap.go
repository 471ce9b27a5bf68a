package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"bucket-manager/core/bucket"
	"bucket-manager/core/config"
	"bucket-manager/core/logger"

	"go.uber.org/zap"
)

// bootstrap loads configuration, creates the logger and builds the bucket registry.
func bootstrap() (*config.Config, *zap.Logger, *bucket.Registry, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg, err := bucket.Build(cfg.Buckets, bucket.WithLogger(logg))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build buckets: %w", err)
	}
	return cfg, logg, reg, nil
}

// resolveBucket returns the bucket named by qualifier, or the primary when it is empty.
func resolveBucket(reg *bucket.Registry, qualifier string) (*bucket.Service, error) {
	if qualifier == "" {
		if svc, ok := reg.Primary(); ok {
			return svc, nil
		}
		return nil, fmt.Errorf("no primary bucket configured, pass --bucket")
	}
	if svc, ok := reg.Lookup(qualifier); ok {
		return svc, nil
	}
	return nil, fmt.Errorf("unknown bucket %q (registered: %v)", qualifier, reg.Qualifiers())
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

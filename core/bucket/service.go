package bucket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bucket-manager/core/metrics"
	"bucket-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Operation names used in errors, logs and metrics.
const (
	OpList        = "list"
	OpGet         = "get"
	OpStat        = "stat"
	OpPut         = "put"
	OpRemove      = "remove"
	OpPresignGet  = "presign_get"
	OpPresignPut  = "presign_put"
	OpPresignPost = "presign_post"
)

// ObjectMetadata describes one stored object or, in non-recursive listings, a common prefix.
type ObjectMetadata struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag,omitempty"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
	IsPrefix     bool              `json:"is_prefix,omitempty"`
}

func metadataFromInfo(info minio.ObjectInfo) ObjectMetadata {
	md := ObjectMetadata{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		IsPrefix:     strings.HasSuffix(info.Key, DefaultDelimiter) && info.Size == 0 && info.ETag == "",
	}
	if len(info.UserMetadata) > 0 {
		md.UserMetadata = make(map[string]string, len(info.UserMetadata))
		for k, v := range info.UserMetadata {
			md.UserMetadata[k] = v
		}
	}
	return md
}

// PutOptions carries optional request headers and user metadata for Put.
type PutOptions struct {
	// Headers are sent as-is. Well-known headers map onto the matching upload option.
	Headers map[string]string
	// UserMetadata is stored as x-amz-meta-* headers.
	UserMetadata map[string]string
}

// Service is the operation surface of one configured bucket.
// It is immutable after construction and safe for concurrent use.
type Service struct {
	qualifier string
	bucket    string
	endpoint  string
	publicURL string
	region    string
	delimiter string
	client    storage.Client
	logger    *zap.Logger
}

// NewService binds a storage client to a normalized descriptor.
func NewService(d Descriptor, client storage.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		qualifier: d.Qualifier,
		bucket:    d.Bucket,
		endpoint:  d.Endpoint,
		publicURL: d.PublicURL,
		region:    d.Region,
		delimiter: DefaultDelimiter,
		client:    client,
		logger:    logger.With(zap.String("qualifier", d.Qualifier), zap.String("bucket", d.Bucket)),
	}
}

// Qualifier returns the name the service is registered under.
func (s *Service) Qualifier() string { return s.qualifier }

// Bucket returns the backend bucket name.
func (s *Service) Bucket() string { return s.bucket }

// Region returns the configured region.
func (s *Service) Region() string { return s.region }

// Client returns the underlying storage client for operations the façade does not cover.
func (s *Service) Client() storage.Client { return s.client }

// Get opens the object for reading. The caller must close the returned reader.
func (s *Service) Get(ctx context.Context, key string) (rc io.ReadCloser, err error) {
	defer s.observe(OpGet, time.Now(), &err)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.fail(OpGet, key, err)
	}
	// GetObject is lazy; Stat issues the request so missing keys are reported here.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.fail(OpGet, key, err)
	}
	return obj, nil
}

// Stat returns object metadata.
func (s *Service) Stat(ctx context.Context, key string) (md ObjectMetadata, err error) {
	defer s.observe(OpStat, time.Now(), &err)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectMetadata{}, s.fail(OpStat, key, err)
	}
	return metadataFromInfo(info), nil
}

// Exists reports whether the key is present. Backend failures other than
// "no such key" are returned.
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Put uploads r under key. size is the exact number of bytes to send; a negative
// size means unknown, in which case the length is taken from the reader when it
// reports one, otherwise the upload is streamed.
func (s *Service) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, opts PutOptions) (err error) {
	defer s.observe(OpPut, time.Now(), &err)

	if size < 0 {
		size = readerSize(r)
	}

	putOpts := buildPutOptions(contentType, opts)
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, putOpts); err != nil {
		return s.fail(OpPut, key, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// Remove deletes the object. Deleting a missing key succeeds.
func (s *Service) Remove(ctx context.Context, key string) (err error) {
	defer s.observe(OpRemove, time.Now(), &err)

	err = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err == nil || IsNoSuchKey(err) {
		return nil
	}
	return s.fail(OpRemove, key, err)
}

// fail wraps a backend error in the package taxonomy.
func (s *Service) fail(op, key string, err error) error {
	return &OperationError{Op: op, Qualifier: s.qualifier, Key: key, Kind: classify(err), Err: err}
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeOK
	if err := *errp; err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = metrics.OutcomeNotFound
		case errors.Is(err, ErrArithmetic):
			outcome = metrics.OutcomeInvalid
		default:
			outcome = metrics.OutcomeError
		}
		s.logger.Debug("Bucket operation failed", zap.String("op", op), zap.String("outcome", outcome), zap.Error(err))
	}
	metrics.ObserveOperation(s.qualifier, op, outcome, time.Since(start))
}

// readerSize returns the unread length of readers that report one, or -1.
func readerSize(r io.Reader) int64 {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len())
	case *os.File:
		if fi, err := v.Stat(); err == nil && fi.Mode().IsRegular() {
			if pos, err := v.Seek(0, io.SeekCurrent); err == nil {
				return fi.Size() - pos
			}
		}
	case interface {
		io.Seeker
		Size() int64
	}:
		// Size is the total length; only the unread remainder is sent.
		if pos, err := v.Seek(0, io.SeekCurrent); err == nil {
			return v.Size() - pos
		}
	}
	return -1
}

func buildPutOptions(contentType string, opts PutOptions) minio.PutObjectOptions {
	putOpts := minio.PutObjectOptions{ContentType: contentType}

	meta := make(map[string]string, len(opts.Headers)+len(opts.UserMetadata))
	for k, v := range opts.Headers {
		switch http.CanonicalHeaderKey(k) {
		case "Content-Type":
			if putOpts.ContentType == "" {
				putOpts.ContentType = v
			}
		case "Cache-Control":
			putOpts.CacheControl = v
		case "Content-Disposition":
			putOpts.ContentDisposition = v
		case "Content-Encoding":
			putOpts.ContentEncoding = v
		case "Content-Language":
			putOpts.ContentLanguage = v
		case "X-Amz-Storage-Class":
			putOpts.StorageClass = v
		default:
			// minio-go sends x-amz-* and standard headers unprefixed.
			meta[k] = v
		}
	}
	for k, v := range opts.UserMetadata {
		meta[k] = v
	}
	if len(meta) > 0 {
		putOpts.UserMetadata = meta
	}
	return putOpts
}

package bucket

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// DefaultPresignExpiry is used when no expiry is given. It is also the longest
// expiry S3 accepts for a presigned URL.
const DefaultPresignExpiry = 7 * 24 * time.Hour

// PresignOptions configures PresignGet and PresignPut.
type PresignOptions struct {
	// Expiry defaults to DefaultPresignExpiry. Sub-second precision is truncated.
	Expiry time.Duration
	// Headers are signed into the URL and must be sent by the client.
	Headers map[string]string
	// QueryParams are added to the signed URL, e.g. response-content-type.
	QueryParams map[string]string
}

// PostOptions configures PresignedPostForm.
type PostOptions struct {
	// Expiry defaults to DefaultPresignExpiry.
	Expiry time.Duration
	// ContentTypePrefix adds a starts-with condition on Content-Type when set.
	ContentTypePrefix string
	// MinLength and MaxLength add a content-length-range condition only when
	// MaxLength > 0 and 0 <= MinLength < MaxLength. Other values are ignored.
	MinLength int64
	MaxLength int64
}

// PostForm is a signed browser upload form.
type PostForm struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// PresignGet returns a URL granting read access to key until the expiry passes.
func (s *Service) PresignGet(ctx context.Context, key string, opts PresignOptions) (u string, err error) {
	defer s.observe(OpPresignGet, time.Now(), &err)
	return s.presign(ctx, OpPresignGet, http.MethodGet, key, opts)
}

// PresignPut returns a URL that lets anyone holding it upload to key.
// Signed headers such as Content-Type do not stop a client from uploading other
// content; validate objects after upload if that matters.
func (s *Service) PresignPut(ctx context.Context, key string, opts PresignOptions) (u string, err error) {
	defer s.observe(OpPresignPut, time.Now(), &err)
	return s.presign(ctx, OpPresignPut, http.MethodPut, key, opts)
}

func (s *Service) presign(ctx context.Context, op, method, key string, opts PresignOptions) (string, error) {
	expiry, err := expirySeconds(opts.Expiry)
	if err != nil {
		return "", &OperationError{Op: op, Qualifier: s.qualifier, Key: key, Kind: ErrArithmetic, Err: err}
	}

	var params url.Values
	if len(opts.QueryParams) > 0 {
		params = make(url.Values, len(opts.QueryParams))
		for k, v := range opts.QueryParams {
			params.Set(k, v)
		}
	}
	var headers http.Header
	if len(opts.Headers) > 0 {
		headers = make(http.Header, len(opts.Headers))
		for k, v := range opts.Headers {
			headers.Set(k, v)
		}
	}

	u, err := s.client.PresignHeader(ctx, method, s.bucket, key, expiry, params, headers)
	if err != nil {
		return "", s.fail(op, key, err)
	}
	return u.String(), nil
}

// PresignedPostForm builds a signed POST policy restricted to key.
func (s *Service) PresignedPostForm(ctx context.Context, key string, opts PostOptions) (form PostForm, err error) {
	defer s.observe(OpPresignPost, time.Now(), &err)

	expiry, err := expirySeconds(opts.Expiry)
	if err != nil {
		return PostForm{}, &OperationError{Op: OpPresignPost, Qualifier: s.qualifier, Key: key, Kind: ErrArithmetic, Err: err}
	}

	policy, err := s.buildPostPolicy(key, expiry, opts)
	if err != nil {
		return PostForm{}, &OperationError{Op: OpPresignPost, Qualifier: s.qualifier, Key: key, Kind: ErrStorage, Err: err}
	}

	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return PostForm{}, s.fail(OpPresignPost, key, err)
	}
	return PostForm{URL: u.String(), Fields: fields}, nil
}

func (s *Service) buildPostPolicy(key string, expiry time.Duration, opts PostOptions) (*minio.PostPolicy, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(expiry)); err != nil {
		return nil, err
	}
	if opts.ContentTypePrefix != "" {
		if err := policy.SetContentTypeStartsWith(opts.ContentTypePrefix); err != nil {
			return nil, err
		}
	}
	if opts.MaxLength > 0 && opts.MinLength >= 0 && opts.MinLength < opts.MaxLength {
		if err := policy.SetContentLengthRange(opts.MinLength, opts.MaxLength); err != nil {
			return nil, err
		}
	}
	return policy, nil
}

// expirySeconds applies the default expiry, truncates to whole seconds and
// rejects values whose second count does not fit in an int32.
func expirySeconds(d time.Duration) (time.Duration, error) {
	if d == 0 {
		d = DefaultPresignExpiry
	}
	secs := int64(d / time.Second)
	if secs > math.MaxInt32 || secs < math.MinInt32 {
		return 0, fmt.Errorf("expiry of %d seconds overflows int32", secs)
	}
	return time.Duration(secs) * time.Second, nil
}

// Package bucket turns a list of bucket descriptors into named, ready-to-use
// object storage services.
//
// # Registry
//
// Build validates the full descriptor set, resolves credentials for every entry and
// constructs one Service per descriptor. Construction is all-or-nothing: a missing
// field, a duplicate qualifier, more than one primary bucket or unresolvable
// credentials abort the build and no registry is returned. The registry is an
// ordinary value; pass it to whatever needs bucket access.
//
// # Credentials
//
// Each descriptor may point at a JSON credentials file ({"accessKey": "...",
// "secretKey": "..."}) and may also carry inline keys. The file wins; if it cannot be
// read or parsed the inline keys are used instead and the cause is logged.
//
// # Service
//
// A Service exposes list, get, stat, put, remove, presign and public URL operations
// on one bucket. Errors are normalized:
//   - ErrNotFound: the backend reported NoSuchKey.
//   - ErrStorage: any other backend failure.
//   - ErrArithmetic: a presign expiry that does not fit in int32 seconds.
//
// Remove treats NoSuchKey as success. Listings drop entries the backend failed to
// decode instead of failing. No operation retries.
//
// # Usage
//
//	reg, err := bucket.Build(cfg.Buckets, bucket.WithLogger(log))
//	if err != nil {
//	    log.Fatal("Invalid bucket configuration", zap.Error(err))
//	}
//	media, _ := reg.Lookup("media")
//	url, err := media.PresignGet(ctx, "avatars/42.png", bucket.PresignOptions{})
package bucket

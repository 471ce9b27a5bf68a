// Package storage provides the backend client used by every configured bucket.
//
// It wraps the MinIO Go client behind the narrow Client interface so the bucket
// façade can be exercised against mocks (see core/storage/mocks). Any S3-compatible
// service reachable by minio-go works: AWS S3, MinIO, Aliyun OSS, Cloudflare R2.
//
// # Client Interface
//
// The interface mirrors the minio-go method set the façade needs:
//   - BucketExists: Verifies access to the target bucket.
//   - ListObjects: Streams object entries (supports prefix/recursive).
//   - GetObject / StatObject: Read content or metadata.
//   - PutObject / RemoveObject: Write and delete.
//   - PresignHeader / PresignedPostPolicy: Sign URLs and browser POST forms.
//
// # Endpoints
//
// Endpoints may be given as full URLs ("https://oss.example.com") or as bare
// host:port pairs. ParseEndpoint derives the TLS flag from the scheme.
//
// # Usage
//
//	client, err := storage.NewClient(storage.Config{Endpoint: "https://s3.amazonaws.com", ...})
//	exists, err := client.BucketExists(ctx, "assets")
package storage

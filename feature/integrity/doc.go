// Package integrity checks that every configured bucket is reachable.
//
// For each registered bucket it verifies that the bucket exists and that a
// single-entry listing succeeds. Buckets are checked concurrently with a bounded
// errgroup; one failing bucket never hides the result of the others.
//
// # HTTP Endpoints
//
//   - GET /integrity : Checks all buckets. 503 when any bucket is unhealthy.
//   - GET /integrity/:qualifier : Checks one bucket.
package integrity

// Package objects exposes the bucket registry over HTTP.
//
// Every route below /buckets/:qualifier resolves the qualifier against the
// registry; the alias "_primary" selects the primary bucket.
//
// # HTTP Endpoints
//
//   - GET /buckets : Registered buckets.
//   - GET /buckets/:qualifier/objects : Listing (prefix, delimiter, recursive).
//   - DELETE /buckets/:qualifier/objects?key= : Remove. Missing keys succeed.
//   - GET /buckets/:qualifier/object?key= : Download.
//   - PUT /buckets/:qualifier/object?key= : Upload the request body.
//   - GET /buckets/:qualifier/stat?key= : Object metadata.
//   - GET /buckets/:qualifier/presign/get?key=&expiry= : Presigned download URL.
//   - GET /buckets/:qualifier/presign/put?key=&expiry=&content_type= : Presigned upload URL.
//   - GET /buckets/:qualifier/presign/post?key=&content_type=&min=&max=&expiry= : Upload form.
//   - GET /buckets/:qualifier/public-url?key= : Unsigned public URL.
//
// Errors map to 404 (unknown bucket, missing object), 400 (bad input, expiry
// overflow) and 502 (backend failure).
package objects

package storage

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Config holds connection settings for a single storage endpoint.
type Config struct {
	// Endpoint is the URL of the storage service. A scheme selects TLS.
	Endpoint string
	// AccessKey is the access key ID for authentication.
	AccessKey string
	// SecretKey is the secret access key for authentication.
	SecretKey string
	// UseSSL is consulted only when Endpoint carries no scheme.
	UseSSL bool
	// Region is the location of the bucket. Empty means DefaultRegion.
	Region string
	// TimeoutSeconds is the connection timeout in seconds. Zero means 30.
	TimeoutSeconds int
}

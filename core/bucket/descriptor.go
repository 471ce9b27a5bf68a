package bucket

import (
	"fmt"
	"strings"

	"bucket-manager/core/storage"
)

// DefaultDelimiter separates path segments in object keys and public URLs.
const DefaultDelimiter = "/"

// Descriptor declares one bucket client to construct.
type Descriptor struct {
	// Primary marks the bucket returned by Registry.Primary. At most one may be set.
	Primary bool `mapstructure:"primary" json:"primary" yaml:"primary"`
	// Qualifier is the unique name the bucket is looked up by.
	Qualifier string `mapstructure:"qualifier" json:"qualifier" yaml:"qualifier"`
	// Endpoint is the storage service URL, e.g. https://oss.example.com.
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	// UseSSL selects TLS for endpoints given as bare host[:port]. A scheme wins.
	UseSSL bool `mapstructure:"use_ssl" json:"use_ssl" yaml:"use_ssl"`
	// Region defaults to us-east-1.
	Region string `mapstructure:"region" json:"region" yaml:"region"`
	// Credentials is the path to a JSON file holding accessKey and secretKey.
	Credentials string `mapstructure:"credentials" json:"credentials" yaml:"credentials"`
	AccessKey   string `mapstructure:"access_key" json:"access_key" yaml:"access_key"`
	SecretKey   string `mapstructure:"secret_key" json:"-" yaml:"secret_key"`
	// Bucket is the bucket name on the backend.
	Bucket string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	// PublicURL, when set, is the base for PublicURL instead of Endpoint/Bucket.
	PublicURL string `mapstructure:"public_url" json:"public_url" yaml:"public_url"`
	// TimeoutSeconds bounds connection setup and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Normalize returns a copy with defaults applied and surrounding whitespace removed.
func (d Descriptor) Normalize() Descriptor {
	d.Qualifier = strings.TrimSpace(d.Qualifier)
	d.Endpoint = strings.TrimSpace(d.Endpoint)
	d.Bucket = strings.TrimSpace(d.Bucket)
	d.Credentials = strings.TrimSpace(d.Credentials)
	d.AccessKey = strings.TrimSpace(d.AccessKey)
	d.SecretKey = strings.TrimSpace(d.SecretKey)
	d.Region = strings.TrimSpace(d.Region)
	if d.Region == "" {
		d.Region = storage.DefaultRegion
	}
	return d
}

// hasCredentialSource reports whether a file path or a complete inline pair is set.
// Whether the file actually yields keys is decided later by ResolveCredentials.
func (d Descriptor) hasCredentialSource() bool {
	if strings.TrimSpace(d.Credentials) != "" {
		return true
	}
	return strings.TrimSpace(d.AccessKey) != "" && strings.TrimSpace(d.SecretKey) != ""
}

// validate checks a single descriptor. The order of checks is part of the contract:
// the first missing field is the one reported.
func (d Descriptor) validate(index int) error {
	fail := func(field, reason string) error {
		return &ConfigError{Index: index, Qualifier: d.Qualifier, Field: field, Reason: reason}
	}

	if d.Bucket == "" {
		return fail("bucket", "bucket name is required")
	}
	if d.Endpoint == "" {
		return fail("endpoint", "endpoint is required")
	}
	if _, _, err := storage.ParseEndpoint(d.Endpoint, false); err != nil {
		return fail("endpoint", err.Error())
	}
	if !d.hasCredentialSource() {
		return fail("credentials", "credentials for bucket are required")
	}
	if d.Qualifier == "" {
		return fail("qualifier", "qualifier is required")
	}
	return nil
}

// Validate enforces the per-descriptor and set-wide invariants.
// Descriptors are expected to be normalized.
func Validate(descriptors []Descriptor) error {
	for i, d := range descriptors {
		if err := d.validate(i); err != nil {
			return err
		}
	}

	seen := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		if first, ok := seen[d.Qualifier]; ok {
			return &ConfigError{
				Index:     i,
				Qualifier: d.Qualifier,
				Field:     "qualifier",
				Reason:    fmt.Sprintf("duplicate qualifier (first declared at entry %d)", first),
			}
		}
		seen[d.Qualifier] = i
	}

	primaries := 0
	for _, d := range descriptors {
		if d.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return &ConfigError{Index: -1, Field: "primary", Reason: "duplicate primary: only one primary bucket is allowed"}
	}

	return nil
}

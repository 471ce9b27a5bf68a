package bucket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Error kinds. Every error returned by this package matches exactly one of them
// under errors.Is.
var (
	// ErrConfiguration is returned when descriptors cannot be turned into a registry.
	ErrConfiguration = errors.New("bucket: configuration error")
	// ErrNotFound is returned when the backend reports that the key does not exist.
	ErrNotFound = errors.New("bucket: no such key")
	// ErrStorage covers every other backend failure.
	ErrStorage = errors.New("bucket: storage error")
	// ErrArithmetic is returned when a presign expiry does not fit in int32 seconds.
	ErrArithmetic = errors.New("bucket: expiry overflow")
)

// notFoundCodes is the set of backend error codes treated as ErrNotFound.
// minio-go reports a 404 on HEAD requests with the same code.
var notFoundCodes = []string{"NoSuchKey"}

// ConfigError describes the descriptor that stopped registry construction.
type ConfigError struct {
	// Index is the position of the offending descriptor, or -1 for set-level checks.
	Index     int
	Qualifier string
	Field     string
	Reason    string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("bucket configuration: ")
	if e.Qualifier != "" {
		fmt.Fprintf(&b, "%q: ", e.Qualifier)
	} else if e.Index >= 0 {
		fmt.Fprintf(&b, "entry %d: ", e.Index)
	}
	b.WriteString(e.Reason)
	return b.String()
}

// Is makes every ConfigError match ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// OperationError is returned by Service operations.
type OperationError struct {
	Op        string
	Qualifier string
	Key       string
	// Kind is one of ErrNotFound, ErrStorage or ErrArithmetic.
	Kind error
	Err  error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Qualifier, e.Key, e.Kind)
	}
	return fmt.Sprintf("%s %s/%s: %v: %v", e.Op, e.Qualifier, e.Key, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the backend cause.
func (e *OperationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsNoSuchKey reports whether err is the backend's "no such key" response.
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	for _, c := range notFoundCodes {
		if strings.EqualFold(resp.Code, c) {
			return true
		}
	}
	return false
}

// classify maps a backend error onto ErrNotFound or ErrStorage.
func classify(err error) error {
	if IsNoSuchKey(err) {
		return ErrNotFound
	}
	return ErrStorage
}

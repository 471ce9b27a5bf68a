package bucket

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Credentials is a resolved access key pair. It is never persisted.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// complete reports whether both halves are present.
func (c Credentials) complete() bool {
	return strings.TrimSpace(c.AccessKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// credentialsFile is the on-disk JSON layout. Unknown fields are ignored.
type credentialsFile struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

// Reasons logged when the credentials file cannot be used.
const (
	reasonUnreadable = "unreadable"
	reasonMalformed  = "malformed"
	reasonIncomplete = "incomplete"
)

var errIncompleteFile = errors.New("accessKey or secretKey missing")

// FromFile reads an access key pair from a JSON credentials file.
// The returned reason names the failure cause for diagnostics.
func FromFile(path string) (Credentials, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, reasonUnreadable, err
	}

	var f credentialsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Credentials{}, reasonMalformed, err
	}

	creds := Credentials{AccessKey: strings.TrimSpace(f.AccessKey), SecretKey: strings.TrimSpace(f.SecretKey)}
	if !creds.complete() {
		return creds, reasonIncomplete, errIncompleteFile
	}
	return creds, "", nil
}

// ResolveCredentials resolves the key pair for a descriptor using the following order:
// 1. The credentials file (if a path is set)
// 2. The inline AccessKey/SecretKey fields, filling whatever the file did not provide
//
// File failures are never returned: an unreadable, malformed or incomplete file falls
// through to the inline fields. The cause is logged so the cases stay distinguishable.
func ResolveCredentials(d Descriptor, logger *zap.Logger) (Credentials, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var creds Credentials
	if d.Credentials != "" {
		fileCreds, reason, err := FromFile(d.Credentials)
		if err != nil {
			logger.Warn("Credentials file not usable, falling back to inline keys",
				zap.String("qualifier", d.Qualifier),
				zap.String("path", d.Credentials),
				zap.String("reason", reason),
				zap.Error(err),
			)
		}
		creds = fileCreds
	}

	if creds.AccessKey == "" {
		creds.AccessKey = strings.TrimSpace(d.AccessKey)
	}
	if creds.SecretKey == "" {
		creds.SecretKey = strings.TrimSpace(d.SecretKey)
	}

	if !creds.complete() {
		return Credentials{}, &ConfigError{
			Index:     -1,
			Qualifier: d.Qualifier,
			Field:     "credentials",
			Reason:    fmt.Sprintf("credentials for %s can not be found", d.Qualifier),
		}
	}
	return creds, nil
}

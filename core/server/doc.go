// Package server holds the HTTP server configuration.
//
// While the start command owns the server lifecycle, this package defines the
// settings it reads: listen port, API key, graceful shutdown bound and whether
// the Prometheus endpoint is mounted.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/start.go.
package server

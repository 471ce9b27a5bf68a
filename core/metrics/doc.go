// Package metrics holds the Prometheus collectors shared by the bucket façade.
//
// Collectors are registered on the default registry at init time and exposed
// through Handler, which the HTTP server mounts at /metrics.
package metrics

// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key). An empty key disables the check.
//   - rayid: assigns every request a ray id, stored in the context locals and
//     echoed in the X-Ray-ID response header.
//
// Register rayid first so every later log line can carry the id.
package middleware

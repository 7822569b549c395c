// Package server exposes the render pipeline and document store over
// HTTP.
//
// Endpoints:
//   - GET    /healthz              - Health check
//   - POST   /api/v1/render        - Render a component to any format
//   - POST   /api/v1/documents     - Store a shareable document
//   - GET    /api/v1/documents/:id - Fetch a stored document
//   - DELETE /api/v1/documents/:id - Delete a stored document
//   - GET    /d/:id                - Rendered HTML page for a document
//
// Routing is chi with request IDs, structured request logging, panic
// recovery and a per-client token bucket rate limit on everything but
// the health check. Errors leave as a JSON envelope carrying the
// pkg/errors code, so clients can branch on "code" without parsing
// messages.
package server

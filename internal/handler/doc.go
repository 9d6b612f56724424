// Package handler implements the editor's HTTP API.
//
// EditorHandler methods map one-to-one onto EditorService operations; Routes
// registers them with Go 1.22 method and wildcard patterns. Service errors are
// translated to status codes with errors.Is: unknown elements are 404,
// occupied ports and empty undo/redo stacks are 409, malformed input is 400.
// Error bodies are {error, details}.
//
// Middleware provides panic recovery, CORS, request logging and Prometheus
// request metrics.
package handler

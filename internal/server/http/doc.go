// Package http provides a production-ready HTTP server with lifecycle
// management, used by internal/lifecycle to serve the daemon's HTTP API.
//
// # Overview
//
// Server wraps net/http.Server with configurable timeouts (a defense
// against slow loris attacks), CORS support for browser clients, and
// synchronous listener binding so an auto-assigned port (Config.Port == 0)
// is discoverable via BoundPort immediately after OnStart returns.
//
// # Lifecycle
//
// Server implements internal/worker.Worker:
//   - OnStart binds the listener and starts serving on a background
//     goroutine, returning an error immediately on a bind failure.
//   - OnStop gracefully shuts down via http.Server.Shutdown, bounded by the
//     passed-in context's deadline.
//
// # Timeout Rationale
//
//   - ReadTimeout: maximum duration for reading the entire request
//     including body, so a slow upload cannot hold a connection forever.
//   - WriteTimeout: maximum duration for writing the response.
//   - IdleTimeout: maximum duration a keep-alive connection stays open
//     between requests.
//   - ReadHeaderTimeout: maximum duration for reading request headers, the
//     primary defense against slow loris attacks (5s by default).
package http

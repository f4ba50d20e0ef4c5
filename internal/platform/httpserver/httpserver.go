// Package httpserver constructs the registry's HTTP server. Listening and
// graceful shutdown are driven by the caller so the server fits into the
// errgroup lifecycle in main.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server for the case registry API. ReadHeaderTimeout bounds
// slow-header clients; request bodies are small JSON payloads, so no further
// timeouts are set here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

package httpserver

import (
	"net/http"
	"time"
)

// New builds the ops HTTP server. Timeouts are tight; nothing served here
// streams or takes long.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

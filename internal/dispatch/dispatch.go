// Package dispatch implements RouteDispatcher (spec.md §4.7): matching
// an inbound path prefix to one of the fixed, compile-time known
// service names and invoking the proxy engine with the remainder.
package dispatch

import (
	"encoding/json"
	"net/http"
	"strings"

	"ecomm/api-gateway/internal/envelope"
)

// Forwarder is the seam RouteDispatcher hands matched requests to.
// proxy.Engine satisfies it.
type Forwarder interface {
	Handle(w http.ResponseWriter, r *http.Request, serviceName, tailPath string)
}

// knownServices is the fixed set named in spec.md §4.7. Adding a
// service requires a rebuild.
var knownServices = map[string]bool{
	"products": true,
	"orders":   true,
	"cart":     true,
	"users":    true,
}

// Dispatcher routes "/{service}/<rest>" to Forwarder.Handle, and
// anything else to a 404 SERVICE_NO_EXIST envelope.
type Dispatcher struct {
	forwarder Forwarder
}

func New(forwarder Forwarder) *Dispatcher {
	return &Dispatcher{forwarder: forwarder}
}

// ServeHTTP implements http.Handler so a Dispatcher can be mounted
// directly as the server's catch-all route.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	service, rest, ok := splitPath(r.URL.Path)
	if !ok || !knownServices[service] {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(envelope.Failure("SERVICE_NO_EXIST", ""))
		return
	}
	d.forwarder.Handle(w, r, service, rest)
}

// splitPath separates "/service/rest/of/path" into ("service",
// "rest/of/path"). A bare "/service" yields an empty tail.
func splitPath(path string) (service, tail string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", "", false
	}
	idx := strings.IndexByte(trimmed, '/')
	if idx < 0 {
		return trimmed, "", true
	}
	return trimmed[:idx], trimmed[idx+1:], true
}

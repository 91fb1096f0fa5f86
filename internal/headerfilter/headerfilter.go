// Package headerfilter implements the two pure header-stripping
// functions spec.md §4.3 names: hop-by-hop headers never cross a proxy
// boundary, and authorization is intentionally dropped so client tokens
// are never leaked to backends.
package headerfilter

import (
	"net/http"
	"strings"
)

var requestDrop = map[string]bool{
	"host":              true,
	"connection":        true,
	"content-length":    true,
	"transfer-encoding": true,
	"authorization":     true,
}

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

const internalPrefix = "x-internal-"

// FilterRequest drops host, connection, content-length,
// transfer-encoding and authorization. Key comparisons are
// case-insensitive; kept keys preserve their original casing.
func FilterRequest(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		if requestDrop[strings.ToLower(k)] {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// FilterResponse drops hop-by-hop headers and anything prefixed
// x-internal- (case-insensitive), which is reserved for gateway<->backend
// metadata and must never reach the client.
func FilterResponse(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		lk := strings.ToLower(k)
		if hopByHop[lk] || strings.HasPrefix(lk, internalPrefix) {
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

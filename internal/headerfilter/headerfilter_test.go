package headerfilter

import (
	"net/http"
	"testing"
)

func TestFilterRequest_DropsSensitiveHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Host", "example.com")
	h.Set("Connection", "keep-alive")
	h.Set("Content-Length", "42")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("Authorization", "Bearer secret")
	h.Set("X-Custom", "keep-me")

	out := FilterRequest(h)

	for _, k := range []string{"Host", "Connection", "Content-Length", "Transfer-Encoding", "Authorization"} {
		if out.Get(k) != "" {
			t.Fatalf("expected %s to be dropped, got %q", k, out.Get(k))
		}
	}
	if out.Get("X-Custom") != "keep-me" {
		t.Fatalf("expected X-Custom to survive, got %q", out.Get("X-Custom"))
	}
}

func TestFilterRequest_CaseInsensitive(t *testing.T) {
	h := http.Header{"authorization": {"Bearer x"}}
	out := FilterRequest(h)
	if len(out) != 0 {
		t.Fatalf("expected lowercase authorization to be dropped, got %v", out)
	}
}

func TestFilterResponse_DropsHopByHopAndInternal(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "close")
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Trailer", "X-Foo")
	h.Set("X-Internal-Service-Id", "svc-1")
	h.Set("Content-Type", "application/json")

	out := FilterResponse(h)

	for _, k := range []string{"Connection", "Keep-Alive", "Trailer", "X-Internal-Service-Id"} {
		if out.Get(k) != "" {
			t.Fatalf("expected %s to be dropped, got %q", k, out.Get(k))
		}
	}
	if out.Get("Content-Type") != "application/json" {
		t.Fatalf("expected Content-Type to survive, got %q", out.Get("Content-Type"))
	}
}

func TestFilterResponse_DoesNotMutateInput(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/plain")
	_ = FilterResponse(h)
	if h.Get("Connection") != "close" {
		t.Fatalf("FilterResponse mutated its input header map")
	}
}

package upstream

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// CallerIdentity derives the caller's network identity from proxy
// headers, preferring the first X-Forwarded-For hop, then X-Real-IP,
// then the socket address.
func CallerIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// UserID builds the per-request user identifier forwarded upstream.
// The nanosecond suffix keeps concurrent requests from one address
// distinguishable.
func UserID(r *http.Request) string {
	return fmt.Sprintf("%s-%d", CallerIdentity(r), time.Now().UnixNano())
}

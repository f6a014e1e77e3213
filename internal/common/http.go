package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address used for rate-limit keys. The router
// runs chi's RealIP first, so RemoteAddr already reflects a trusted proxy
// header when one was present; forwarding headers are consulted only when
// RemoteAddr is empty.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

package middleware

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the identity used when no address can be derived.
const UnknownClient = "unknown"

// ClientIdentity derives the rate-limit key for a request: the first
// X-Forwarded-For entry, then X-Real-IP, then the RemoteAddr host.
// It is not an authentication signal; the headers are client-controlled.
func ClientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}

	return UnknownClient
}

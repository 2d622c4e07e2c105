package clientip

import (
	"net"
	"net/http"
	"strings"
)

// headers is the lookup order: CDN headers first, generic proxy headers
// after, direct connection last.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP address from the request. Proxy headers
// are checked in priority order; the first valid IP wins. When no header
// yields a valid address, the connection's RemoteAddr is used. The function
// never returns an empty string.
func GetIP(r *http.Request) string {
	for _, header := range headers {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		// X-Forwarded-For may list "client, proxy1, proxy2"; the leftmost
		// entry is the original client.
		if header == "X-Forwarded-For" {
			if idx := strings.IndexByte(value, ','); idx >= 0 {
				value = value[:idx]
			}
		}
		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// normalize validates and canonicalizes an IP string. It returns "" for
// invalid addresses and for 0.0.0.0, which signals the absence of a real
// client address.
func normalize(value string) string {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}

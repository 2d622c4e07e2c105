// Package clientip extracts real client IP addresses from HTTP requests.
//
// Requests arriving through proxies, load balancers, or CDNs carry the
// original client address in headers rather than in RemoteAddr. The package
// checks headers in priority order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry is the original client)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// Every candidate is parsed and normalized; malformed values and the
// unspecified address 0.0.0.0 are skipped. GetIP never panics and always
// returns a non-empty string:
//
//	clientIP := clientip.GetIP(r)
package clientip

package middleware

import (
	"net"
	"net/http"

	"just-landed/tracker/internal/logging"
)

// TrustedSourceMiddleware restricts an endpoint to callers inside the
// given CIDR blocks. Used for the upstream alert callback, which carries
// no signature.
func TrustedSourceMiddleware(cidrs []string) func(http.Handler) http.Handler {
	var nets []*net.IPNet
	for _, c := range cidrs {
		_, block, err := net.ParseCIDR(c)
		if err != nil {
			logging.Warn("Skipping invalid trusted CIDR", "cidr", c)
			continue
		}
		nets = append(nets, block)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ip := net.ParseIP(host)

			if ip == nil || !containedIn(nets, ip) {
				logging.Warn("Rejected callback from untrusted source", "remote", r.RemoteAddr)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containedIn(nets []*net.IPNet, ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	for _, block := range nets {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"just-landed/tracker/internal/logging"
)

// SignatureHeader carries the client's request signature.
const SignatureHeader = "X-Just-Landed-Signature"

// SignatureMiddleware verifies the signature header the client computes
// over the request: HMAC-SHA256(secret, METHOD + PATH + sorted query).
// Requests from anything other than the official client get a 403.
func SignatureMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				// Unset secret means local development.
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(SignatureHeader)
			if provided == "" {
				logging.Warn("Rejected unsigned request", "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			expected := SignRequest(secret, r.Method, r.URL.Path, r.URL.Query())
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				logging.Warn("Rejected request with bad signature", "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignRequest computes the hex signature for a request. Query keys are
// sorted so clients don't have to agree on parameter order.
func SignRequest(secret, method, path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteString(path)
	for _, k := range keys {
		for _, v := range query[k] {
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(v)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

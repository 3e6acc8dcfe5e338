package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestSignRequestIsOrderIndependent(t *testing.T) {
	a := SignRequest("secret", "GET", "/v1/track/UAL100/abc",
		url.Values{"uuid": {"u"}, "latitude": {"37.1"}})
	b := SignRequest("secret", "GET", "/v1/track/UAL100/abc",
		url.Values{"latitude": {"37.1"}, "uuid": {"u"}})
	if a != b {
		t.Error("signature must not depend on query parameter order")
	}
}

func TestSignatureMiddleware(t *testing.T) {
	handler := SignatureMiddleware("secret")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("valid signature passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/search/UAL100?uuid=u", nil)
		req.Header.Set(SignatureHeader,
			SignRequest("secret", "GET", "/v1/search/UAL100", req.URL.Query()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/search/UAL100", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("tampered query rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/search/UAL100?uuid=u", nil)
		req.Header.Set(SignatureHeader,
			SignRequest("secret", "GET", "/v1/search/UAL100", url.Values{"uuid": {"other"}}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}

func TestTrustedSourceMiddleware(t *testing.T) {
	handler := TrustedSourceMiddleware([]string{"70.42.6.0/24"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	cases := []struct {
		remote string
		want   int
	}{
		{"70.42.6.10:5511", http.StatusOK},
		{"127.0.0.1:9000", http.StatusOK}, // loopback always trusted
		{"8.8.8.8:443", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/v1/alert", nil)
		req.RemoteAddr = tc.remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("remote %s: status = %d, want %d", tc.remote, rec.Code, tc.want)
		}
	}
}

package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/automator/internal/logger"
)

var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(UserFrom(r.Context())))
})

func TestRateLimitPerConsumer(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerMin: 1})(echoUser)

	call := func(target string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec.Code
	}

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		if got := call("/x?access_token=alice.secret"); got != want {
			t.Fatalf("call %d: status = %d, want %d", i, got, want)
		}
	}
	// Another consumer from the same IP has its own bucket.
	if got := call("/x?access_token=bob.secret"); got != http.StatusOK {
		t.Errorf("other consumer: status = %d", got)
	}
}

func TestConsumerOrIP(t *testing.T) {
	key := ConsumerOrIP(false)

	tests := []struct {
		name   string
		target string
		auth   string
		want   string
	}{
		{"query token", "/x?access_token=abc.def", "", "consumer:abc"},
		{"bearer token", "/x", "Bearer abc.def", "consumer:abc"},
		{"malformed token", "/x?access_token=abc", "", "ip:192.0.2.1"},
		{"basic auth", "/x", "Basic Zm9vOmJhcg==", "ip:192.0.2.1"},
		{"anonymous", "/x", "", "ip:192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.auth != "" {
				r.Header.Set("Authorization", tt.auth)
			}
			if got := key(r); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserAndNoCache(t *testing.T) {
	h := User(NoCache(echoUser))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(UserHeader, " admin ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Body.String() != "admin" {
		t.Errorf("user = %q", rec.Body.String())
	}
	if rec.Header().Get("Pragma") != "no-cache" {
		t.Errorf("missing no-cache headers: %v", rec.Header())
	}
}

func TestRequireUser(t *testing.T) {
	h := User(RequireUser(echoUser))

	tests := []struct {
		name string
		user string
		want int
	}{
		{"named user", "admin", http.StatusOK},
		{"anonymous", "", http.StatusUnauthorized},
		{"blank header", "   ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != "" {
				r.Header.Set(UserHeader, tt.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(echoUser)

	tests := []struct {
		remote string
		want   int
	}{
		{"10.1.2.3:4000", http.StatusOK},
		{"192.0.2.1:4000", http.StatusForbidden},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.remote, rec.Code, tt.want)
		}
	}
}

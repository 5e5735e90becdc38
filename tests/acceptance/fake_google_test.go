package acceptance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// fakeGoogle stands in for Google's OAuth endpoints. The userinfo payload is
// settable per test.
type fakeGoogle struct {
	mu     sync.Mutex
	server *httptest.Server
	user   map[string]string
}

func newFakeGoogle() *fakeGoogle {
	g := &fakeGoogle{
		user: map[string]string{
			"sub":     "google-sub-1",
			"email":   "oauth@example.com",
			"name":    "OAuth User",
			"picture": "https://example.com/avatar.png",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		// The browser never reaches this in tests; callback is hit directly.
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fake-access-token",
			"refresh_token": "fake-refresh-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		user := g.user
		g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	})

	g.server = httptest.NewServer(mux)
	return g
}

func (g *fakeGoogle) URL() string {
	return g.server.URL
}

func (g *fakeGoogle) SetUser(sub, email, name, picture string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = map[string]string{
		"sub":     sub,
		"email":   email,
		"name":    name,
		"picture": picture,
	}
}

func (g *fakeGoogle) Close() {
	g.server.Close()
}

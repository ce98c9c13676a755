package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// Config holds authentication configuration.
type Config struct {
	Enabled bool
	Token   string
}

// exemptPaths are always public regardless of auth configuration. The
// visualization itself is public; auth guards the mutating endpoints
// (scene replacement) when enabled.
var exemptPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// exemptPrefixes are path prefixes that are always public.
var exemptPrefixes = []string{
	"/api/v1/stream/",
	"/api/v1/session/",
	"/api/v1/predict",
	"/api/v1/models",
	"/api/v1/stats",
	"/api/v1/features",
	"/api/v1/examples",
	"/api/v1/lightcurve",
	"/static/",
}

// isExempt returns true if the path is exempt from auth.
func isExempt(path string) bool {
	if exemptPaths[path] || path == "/" {
		return true
	}
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns an HTTP middleware that enforces Bearer token auth
// on non-exempt paths when auth is enabled.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// GET /api/v1/scene is a public read; only mutation needs a token.
			if r.Method == http.MethodGet && r.URL.Path == "/api/v1/scene" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")

			if header == "" || token == header || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package health

import (
	"net/http"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz reports readiness: a scene must be loaded before the service can
// drive sessions.
func Readyz(store *scene.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if store.Get() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no scene loaded\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready\n"))
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/auth"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/stream"
)

func newTestServer(t *testing.T, authCfg auth.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := scene.NewStore(scene.Demo(), "demo")
	return NewServer(":0", store, stream.Config{}, logger, authCfg)
}

func do(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, rd)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.HTTPServer().Handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	if w := do(t, s, "GET", "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	if w := do(t, s, "GET", "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz = %d", w.Code)
	}
}

func TestReadyzWithoutScene(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := scene.NewStore(nil, "")
	s := NewServer(":0", store, stream.Config{}, logger, auth.Config{})

	if w := do(t, s, "GET", "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without scene = %d, want 503", w.Code)
	}
}

func TestGetScene(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	w := do(t, s, "GET", "/api/v1/scene", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["source"] != "demo" {
		t.Fatalf("source = %v, want demo", body["source"])
	}
	if _, ok := body["scene"]; !ok {
		t.Fatal("response missing scene")
	}
	if body["range_end"].(float64) <= body["range_start"].(float64) {
		t.Fatalf("range = [%v, %v]", body["range_start"], body["range_end"])
	}
}

func TestSetScene(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	sc := scene.Demo()
	sc.Star.Name = "Replaced"
	data, _ := json.Marshal(sc)

	w := do(t, s, "POST", "/api/v1/scene", string(data), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, s, "GET", "/api/v1/scene", "", nil)
	body := decodeBody(t, w)
	if body["source"] != "api" {
		t.Fatalf("source after replace = %v, want api", body["source"])
	}
}

func TestSetSceneInvalid(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	sc := scene.Demo()
	sc.Planets[0].Eccentricity = 2
	data, _ := json.Marshal(sc)

	w := do(t, s, "POST", "/api/v1/scene", string(data), nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(decodeBody(t, w)["error"].(string), "eccentricity") {
		t.Fatalf("error does not name the field: %s", w.Body.String())
	}
}

func TestSetSceneMalformed(t *testing.T) {
	s := newTestServer(t, auth.Config{})
	if w := do(t, s, "POST", "/api/v1/scene", "{not json", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSessionEndpointsUnknownID(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	for _, ep := range []string{"seek", "select", "playback"} {
		w := do(t, s, "POST", "/api/v1/session/deadbeef/"+ep, "{}", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s for unknown session = %d, want 404", ep, w.Code)
		}
	}
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	const body = `{"features":{"koi_period":289.9,"koi_depth":492}}`
	w := do(t, s, "POST", "/api/v1/predict", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decodeBody(t, w)
	if res["model_used"] != "xgboost" {
		t.Fatalf("model_used = %v, want default xgboost", res["model_used"])
	}
	if res["classification"] == "" {
		t.Fatal("missing classification")
	}

	// Determinism survives the HTTP round trip.
	w2 := do(t, s, "POST", "/api/v1/predict", body, nil)
	res2 := decodeBody(t, w2)
	if res["classification"] != res2["classification"] || res["confidence"] != res2["confidence"] {
		t.Fatalf("repeated request diverged: %v vs %v", res, res2)
	}
}

func TestPredictUnknownModel(t *testing.T) {
	s := newTestServer(t, auth.Config{})
	w := do(t, s, "POST", "/api/v1/predict", `{"model":"svm","features":{"koi_period":1}}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPredictEmptyFeatures(t *testing.T) {
	s := newTestServer(t, auth.Config{})
	w := do(t, s, "POST", "/api/v1/predict", `{"features":{}}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPredictBatch(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	const body = `{"samples":[{"koi_period":1.2},{},{"koi_period":42}]}`
	w := do(t, s, "POST", "/api/v1/predict/batch", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decodeBody(t, w)
	if res["count"].(float64) != 3 {
		t.Fatalf("count = %v, want 3", res["count"])
	}
	results := res["results"].([]any)
	// The empty sample yields a per-sample error, not a batch failure.
	if _, ok := results[1].(map[string]any)["error"]; !ok {
		t.Fatalf("sample 1 should carry an error: %v", results[1])
	}
	if _, ok := results[0].(map[string]any)["classification"]; !ok {
		t.Fatalf("sample 0 should carry a result: %v", results[0])
	}
}

func TestPredictBatchTooLarge(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	samples := make([]string, 101)
	for i := range samples {
		samples[i] = fmt.Sprintf(`{"koi_period":%d}`, i)
	}
	body := `{"samples":[` + strings.Join(samples, ",") + `]}`
	if w := do(t, s, "POST", "/api/v1/predict/batch", body, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLightcurve(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	w := do(t, s, "GET", "/api/v1/lightcurve?samples=100", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decodeBody(t, w)
	series := res["series"].(map[string]any)
	if n := len(series["flux"].([]any)); n != 100 {
		t.Fatalf("flux samples = %d, want 100", n)
	}
	if _, ok := res["stats"]; !ok {
		t.Fatal("response missing stats")
	}
}

func TestLightcurveBadParams(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	for _, q := range []string{
		"samples=5",       // below range
		"samples=abc",     // not a number
		"start=x",         // not a number
		"start=2e9&end=1", // end clamps below start
	} {
		if w := do(t, s, "GET", "/api/v1/lightcurve?"+q, "", nil); w.Code != http.StatusBadRequest {
			t.Errorf("query %q = %d, want 400", q, w.Code)
		}
	}
}

func TestModelsInfo(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	w := do(t, s, "GET", "/api/v1/models/info", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	res := decodeBody(t, w)
	if res["default"] != "xgboost" {
		t.Fatalf("default = %v", res["default"])
	}
	if n := len(res["feature_set"].([]any)); n != 8 {
		t.Fatalf("feature_set entries = %d, want 8", n)
	}
}

func TestStatsAndExamples(t *testing.T) {
	s := newTestServer(t, auth.Config{})

	for _, path := range []string{"/api/v1/stats", "/api/v1/features/importance", "/api/v1/examples"} {
		if w := do(t, s, "GET", path, "", nil); w.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, w.Code)
		}
	}
}

func TestAuthProtectsSceneMutation(t *testing.T) {
	s := newTestServer(t, auth.Config{Enabled: true, Token: "secret"})

	data, _ := json.Marshal(scene.Demo())
	if w := do(t, s, "POST", "/api/v1/scene", string(data), nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated mutation = %d, want 401", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/scene", string(data),
		map[string]string{"Authorization": "Bearer wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d, want 401", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/scene", string(data),
		map[string]string{"Authorization": "Bearer secret"}); w.Code != http.StatusOK {
		t.Fatalf("authenticated mutation = %d, want 200", w.Code)
	}

	// Reads and probes stay public with auth enabled.
	if w := do(t, s, "GET", "/api/v1/scene", "", nil); w.Code != http.StatusOK {
		t.Fatalf("public scene read = %d, want 200", w.Code)
	}
	if w := do(t, s, "GET", "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz with auth = %d, want 200", w.Code)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/bridge"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/lightcurve"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/predict"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/simclock"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleGetScene returns the active scene.
// GET /api/v1/scene
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	sc := s.store.Get()
	if sc == nil {
		writeError(w, http.StatusServiceUnavailable, "no scene loaded")
		return
	}
	source, loadedAt := s.store.Source()
	start, end := sc.TimeRange()
	writeJSON(w, http.StatusOK, map[string]any{
		"scene":       sc,
		"source":      source,
		"loaded_at":   loadedAt.UTC().Format(time.RFC3339),
		"range_start": start,
		"range_end":   end,
	})
}

// handleSetScene replaces the active scene. The new scene must validate;
// open streams keep the scene they started with.
// POST /api/v1/scene
func (s *Server) handleSetScene(w http.ResponseWriter, r *http.Request) {
	body, err := readAll(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := scene.Parse(body)
	if err != nil {
		var fe *scene.FieldError
		if errors.As(err, &fe) {
			writeError(w, http.StatusUnprocessableEntity, fe.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse scene: %v", err))
		return
	}
	s.store.Set(sc, "api")
	metrics.SetSceneBodies(len(sc.Planets))
	s.logger.Info("scene replaced", "star", sc.Star.Name, "planets", len(sc.Planets))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "planets": len(sc.Planets)})
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// seekRequest is the body of POST /api/v1/session/{id}/seek.
type seekRequest struct {
	TimeUnix float64 `json:"time_unix"`
}

// handleSeek publishes a seek-request onto the session's event bridge. The
// session only honors it when its sync flag is set; the response reports
// whether the request was delivered, not whether it was honored.
// POST /api/v1/session/{id}/seek
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req seekRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid seek body")
		return
	}
	sess.Bus().PublishSeekRequest(bridge.SeekRequest{TimeUnix: req.TimeUnix})
	writeJSON(w, http.StatusAccepted, map[string]bool{"delivered": true})
}

// selectRequest is the body of POST /api/v1/session/{id}/select.
type selectRequest struct {
	PlanetID string `json:"planet_id"`
}

// handleSelect marks a planet as selected in the session.
// POST /api/v1/session/{id}/select
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req selectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid select body")
		return
	}
	if !sess.Select(req.PlanetID) {
		writeError(w, http.StatusNotFound, "unknown planet id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// playbackRequest is the body of POST /api/v1/session/{id}/playback.
// Absent fields leave the corresponding control untouched.
type playbackRequest struct {
	Action string   `json:"action,omitempty"` // "play" or "pause"
	Speed  *float64 `json:"speed,omitempty"`
	Trails *bool    `json:"trails,omitempty"`
	Sync   *bool    `json:"sync,omitempty"`
}

// handlePlayback adjusts a session's playback controls.
// POST /api/v1/session/{id}/playback
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Get(r.PathValue("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	var req playbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid playback body")
		return
	}

	switch req.Action {
	case "":
	case "play":
		sess.Clock().Play()
	case "pause":
		sess.Clock().Pause()
	default:
		writeError(w, http.StatusBadRequest, "action must be play or pause")
		return
	}
	applied := sess.Clock().Speed()
	if req.Speed != nil {
		applied = sess.Clock().SetSpeed(*req.Speed)
	}
	if req.Trails != nil {
		sess.SetTrails(*req.Trails)
	}
	if req.Sync != nil {
		sess.SetSync(*req.Sync)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playing": sess.Clock().State() == simclock.Playing,
		"speed":   applied,
	})
}

// handleLightcurve synthesizes a light curve for the active scene.
// GET /api/v1/lightcurve?start=&end=&samples=
func (s *Server) handleLightcurve(w http.ResponseWriter, r *http.Request) {
	sc := s.store.Get()
	if sc == nil {
		writeError(w, http.StatusServiceUnavailable, "no scene loaded")
		return
	}

	rangeStart, rangeEnd := sc.TimeRange()
	start, end := rangeStart, rangeEnd
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start parameter")
			return
		}
		start = sc.ClampTime(f)
	}
	if v := q.Get("end"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end parameter")
			return
		}
		end = sc.ClampTime(f)
	}
	if end <= start {
		writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	samples := 2000
	if v := q.Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 10 || n > 20000 {
			writeError(w, http.StatusBadRequest, "invalid samples parameter, must be 10-20000")
			return
		}
		samples = n
	}

	series := lightcurve.Synthesize(r.Context(), sc, start, end, samples, 0)
	writeJSON(w, http.StatusOK, map[string]any{
		"series": series,
		"stats":  lightcurve.Summarize(series),
	})
}

// Mock prediction surface. These endpoints exist so the demo site has a
// complete backend to talk to; no model runs here.

// handleModelsInfo lists the advertised models.
// GET /api/v1/models/info
func (s *Server) handleModelsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":       predict.Models(),
		"default":      "xgboost",
		"feature_set":  predict.FeatureNames,
		"class_labels": predict.Classes,
	})
}

// predictRequest is the body of POST /api/v1/predict.
type predictRequest struct {
	Model    string             `json:"model,omitempty"`
	Features map[string]float64 `json:"features"`
}

// handlePredict returns a deterministic mock classification.
// POST /api/v1/predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid predict body")
		return
	}
	if req.Model == "" {
		req.Model = "xgboost"
	}
	if _, ok := predict.Models()[req.Model]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown model %q", req.Model))
		return
	}
	res, err := predict.Classify(req.Model, req.Features)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// batchPredictRequest is the body of POST /api/v1/predict/batch.
type batchPredictRequest struct {
	Model   string               `json:"model,omitempty"`
	Samples []map[string]float64 `json:"samples"`
}

// handlePredictBatch classifies up to 100 samples in one call.
// POST /api/v1/predict/batch
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchPredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch body")
		return
	}
	if req.Model == "" {
		req.Model = "xgboost"
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "no samples provided")
		return
	}
	if len(req.Samples) > 100 {
		writeError(w, http.StatusBadRequest, "at most 100 samples per batch")
		return
	}

	results := make([]any, len(req.Samples))
	for i, features := range req.Samples {
		res, err := predict.Classify(req.Model, features)
		if err != nil {
			results[i] = map[string]string{"error": err.Error()}
			continue
		}
		results[i] = res
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(results),
		"results": results,
	})
}

// handleStats returns static dataset/model statistics.
// GET /api/v1/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, predict.DatasetStats())
}

// handleFeatureImportance returns the tabular model's importance ranking.
// GET /api/v1/features/importance
func (s *Server) handleFeatureImportance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"model":    "xgboost",
		"features": predict.FeatureImportance(),
	})
}

// handleExamples returns canned example inputs.
// GET /api/v1/examples
func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, predict.Examples())
}

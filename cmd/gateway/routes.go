package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/musimo/gateway/internal/analysis"
	"github.com/musimo/gateway/internal/store"
)

// defaultListLimit is how many analysis log rows are returned when the
// caller omits the ?limit= query parameter.
const defaultListLimit = 20

type deps struct {
	cfg       config
	predictor *analysis.PredictorRouter
	wsHandler http.Handler
	logStore  *store.Store
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.Handle("/ws/analyze-emotion", d.wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("GET /api/emotions", d.handleEmotions)
	registerLogRoutes(mux, d.logStore)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (d deps) handleEmotions(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"model_version":    analysis.ModelVersion,
		"emotions":         analysis.EmotionNames,
		"prediction_types": []string{"static", "dynamic", "both"},
		"engines":          d.predictor.Engines(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func registerLogRoutes(mux *http.ServeMux, logStore *store.Store) {
	mux.HandleFunc("GET /api/analyses", func(w http.ResponseWriter, r *http.Request) {
		if logStore == nil {
			http.Error(w, "analysis log disabled", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", defaultListLimit)
		offset := queryInt(r, "offset", 0)
		analyses, total, err := logStore.ListAnalyses(limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"analyses": analyses, "total": total})
	})

	mux.HandleFunc("GET /api/analyses/{id}", func(w http.ResponseWriter, r *http.Request) {
		if logStore == nil {
			http.Error(w, "analysis log disabled", http.StatusNotFound)
			return
		}
		a, err := logStore.GetAnalysis(r.PathValue("id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a)
	})

	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if logStore == nil {
			http.Error(w, "analysis log disabled", http.StatusNotFound)
			return
		}
		sess, analyses, err := logStore.GetSession(r.PathValue("id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"session": sess, "analyses": analyses})
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

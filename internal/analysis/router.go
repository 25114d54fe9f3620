package analysis

import (
	"context"
	"fmt"

	"github.com/musimo/gateway/internal/audio"
)

// PredictorRouter dispatches to a named inference backend with a fallback
// default, so the gateway can mix the builtin heuristic with an external
// model server.
type PredictorRouter struct {
	backends map[string]EmotionPredictor
	fallback string
}

// NewPredictorRouter creates a router with registered backends and a
// fallback engine name used when the requested engine is not found.
func NewPredictorRouter(backends map[string]EmotionPredictor, fallback string) *PredictorRouter {
	return &PredictorRouter{backends: backends, fallback: fallback}
}

// Route returns the backend for the given engine name, falling back to the
// default.
func (r *PredictorRouter) Route(engine string) (EmotionPredictor, error) {
	if backend, ok := r.backends[engine]; ok {
		return backend, nil
	}
	if backend, ok := r.backends[r.fallback]; ok {
		return backend, nil
	}
	return nil, fmt.Errorf("no inference backend for engine %q", engine)
}

// Engines returns the names of all registered backends.
func (r *PredictorRouter) Engines() []string {
	names := make([]string, 0, len(r.backends))
	for k := range r.backends {
		names = append(names, k)
	}
	return names
}

// PredictStatic routes to the default backend.
func (r *PredictorRouter) PredictStatic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*StaticPrediction, error) {
	backend, err := r.Route(r.fallback)
	if err != nil {
		return nil, err
	}
	return backend.PredictStatic(ctx, f, onProgress)
}

// PredictDynamic routes to the default backend.
func (r *PredictorRouter) PredictDynamic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*DynamicPrediction, error) {
	backend, err := r.Route(r.fallback)
	if err != nil {
		return nil, err
	}
	return backend.PredictDynamic(ctx, f, onProgress)
}

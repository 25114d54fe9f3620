package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/musimo/gateway/internal/analysis"
	"github.com/musimo/gateway/internal/store"
	"github.com/musimo/gateway/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := loadConfig()

	// Inference backends
	backends := map[string]analysis.EmotionPredictor{
		"builtin": analysis.NewBuiltinPredictor(),
	}
	defaultEngine := "builtin"
	if cfg.modelServerURL != "" {
		backends["model-server"] = analysis.NewModelClient(cfg.modelServerURL, cfg.modelPoolSize)
		defaultEngine = "model-server"
	}
	if cfg.inferenceEngine != "" {
		defaultEngine = cfg.inferenceEngine
	}
	predictor := analysis.NewPredictorRouter(backends, defaultEngine)

	// Analysis log (optional)
	var logStore *store.Store
	var recorder *store.Recorder
	if cfg.databaseURL != "" {
		var err error
		logStore, err = store.Open(cfg.databaseURL)
		if err != nil {
			slog.Error("analysis log store", "error", err)
			os.Exit(1)
		}
		defer logStore.Close()
		recorder = store.NewRecorder(logStore)
		defer recorder.Close()
		slog.Info("analysis log enabled")
	}

	runner := analysis.NewRunner(analysis.RunnerConfig{
		Predictor:      predictor,
		SegmentSeconds: cfg.segmentSeconds,
	})

	handler := ws.NewHandler(ws.HandlerConfig{
		Runner:         runner,
		Recorder:       recorder,
		MaxConcurrent:  cfg.maxConcurrent,
		MaxUploadBytes: cfg.maxUploadBytes,
		IdleTimeout:    cfg.sessionIdleTimeout,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		cfg:       cfg,
		predictor: predictor,
		wsHandler: handler,
		logStore:  logStore,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("gateway starting", "addr", addr,
		"engine", defaultEngine, "max_concurrent", cfg.maxConcurrent)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("gateway stopped")
}

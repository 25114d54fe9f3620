package main

import (
	"os"
	"strconv"
	"time"
)

type config struct {
	port               string
	databaseURL        string
	modelServerURL     string
	modelPoolSize      int
	inferenceEngine    string
	maxConcurrent      int
	maxUploadBytes     int64
	sessionIdleTimeout time.Duration
	segmentSeconds     float64
}

func loadConfig() config {
	return config{
		port:               envStr("GATEWAY_PORT", "8000"),
		databaseURL:        envStr("DATABASE_URL", ""),
		modelServerURL:     envStr("MODEL_SERVER_URL", ""),
		modelPoolSize:      envInt("MODEL_POOL_SIZE", 10),
		inferenceEngine:    envStr("INFERENCE_ENGINE", ""),
		maxConcurrent:      envInt("MAX_CONCURRENT_SESSIONS", 100),
		maxUploadBytes:     int64(envInt("MAX_UPLOAD_BYTES", 50<<20)),
		sessionIdleTimeout: envDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute),
		segmentSeconds:     envFloat("SEGMENT_SECONDS", 5.0),
	}
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

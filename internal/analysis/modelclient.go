package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/musimo/gateway/internal/audio"
	"github.com/musimo/gateway/internal/metrics"
)

// ModelClient sends audio as multipart WAV to an external emotion model
// server exposing /predict/static and /predict/dynamic.
type ModelClient struct {
	url    string
	client *http.Client
}

// NewModelClient creates a client for the emotion model server.
func NewModelClient(url string, poolSize int) *ModelClient {
	return &ModelClient{
		url:    url,
		client: NewPooledHTTPClient(poolSize, 120*time.Second),
	}
}

// PredictStatic uploads the clip and returns the whole-clip distribution.
func (c *ModelClient) PredictStatic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*StaticPrediction, error) {
	if onProgress != nil {
		onProgress(10, "Uploading audio to model server")
	}
	var result StaticPrediction
	if err := c.predict(ctx, "/predict/static", f, &result); err != nil {
		return nil, err
	}
	if result.ModelVersion == "" {
		result.ModelVersion = ModelVersion
	}
	return &result, nil
}

// PredictDynamic uploads the clip and returns the time-segmented distribution.
func (c *ModelClient) PredictDynamic(ctx context.Context, f *audio.Features, onProgress ProgressFunc) (*DynamicPrediction, error) {
	if onProgress != nil {
		onProgress(10, "Uploading audio to model server")
	}
	var result DynamicPrediction
	if err := c.predict(ctx, "/predict/dynamic", f, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ModelClient) predict(ctx context.Context, endpoint string, f *audio.Features, out any) error {
	body, contentType, err := buildMultipartAudio(f.Samples, f.SampleRate)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+endpoint, body)
	if err != nil {
		return fmt.Errorf("create model request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("inference", "http").Inc()
		return fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.Errors.WithLabelValues("inference", "status").Inc()
		return fmt.Errorf("model status %d: %s", resp.StatusCode, string(respBody))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}

	metrics.StepDuration.WithLabelValues("inference_http").Observe(time.Since(start).Seconds())
	return nil
}

func buildMultipartAudio(samples []float32, sampleRate int) (*bytes.Buffer, string, error) {
	wavData := audio.EncodeWAV(samples, sampleRate)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}

	if _, err = part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

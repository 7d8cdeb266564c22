package gazereplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
)

const (
	defaultTimeout      = 5 * time.Second
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNoBaseURL is returned when Run has nowhere to send samples.
var ErrNoBaseURL = errors.New("gazereplay: base url is required")

// Run replays one synthetic trace against the service at cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	log := logger.Named("gazereplay")
	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}

	log.Info(ctx, "starting gaze replay",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.String("shape", string(cfg.Shape)),
		logger.Int("samples", cfg.Samples),
		logger.Int("rate", cfg.Rate),
	)

	client := newHTTPClient(timeout)
	if err := client.checkHealth(ctx, cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	trace, err := Generate(cfg.Shape, cfg.Samples, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("trace generation failed: %w", err)
	}
	stats.Generated = len(trace)

	if cfg.OutputFile != "" {
		if err := saveTrace(cfg.OutputFile, trace); err != nil {
			return nil, err
		}
	}

	var tick <-chan time.Time
	if cfg.Rate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.Rate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, g := range trace {
		if tick != nil && i > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-tick:
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Sent++
		if client.postGaze(ctx, cfg.BaseURL, toSample(g)) {
			stats.Accepted++
		} else {
			stats.Failed++
		}
		if cfg.Verbose {
			log.Debug(ctx, "sample sent", logger.Int("index", i), logger.Float64("y", g.Y))
		}
	}

	server, err := client.stats(ctx, cfg.BaseURL)
	if err != nil {
		log.Warn(ctx, "could not read service stats", logger.Error(err))
	}
	stats.Server = server

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "gaze replay completed",
		logger.String("runID", stats.RunID),
		logger.Int("sent", stats.Sent),
		logger.Int("accepted", stats.Accepted),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Any("lastDeltaY", server["lastDeltaY"]),
	)
	return stats, nil
}

// saveTrace writes the generated trace as JSON.
func saveTrace(path string, trace []model.GazeData) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	samples := make([]Sample, len(trace))
	for i, g := range trace {
		samples[i] = toSample(g)
	}
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

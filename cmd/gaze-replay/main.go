package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/eyeflow/internal/gazereplay"
	"github.com/okian/eyeflow/pkg/logger"
)

const (
	defaultSamples   = 300
	defaultRate      = 30
	defaultTimeout   = 5 * time.Second
	defaultRunBudget = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9090", "Base URL of the service")
		shape   = flag.String("shape", string(gazereplay.ShapeSweep), "Trace shape: top, bottom, center, sweep, jitter")
		samples = flag.Int("samples", defaultSamples, "Number of gaze samples to post")
		rate    = flag.Int("rate", defaultRate, "Samples per second (0 posts back to back)")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "Seed for the trace generator")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output  = flag.String("output", "", "Write the generated trace to this JSON file")
		format  = flag.String("log-format", "text", "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Log every sample")
	)
	flag.Parse()

	if err := logger.InitWithOptions(logger.Options{Format: *format}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	sh, err := gazereplay.ParseShape(*shape)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunBudget)
	defer cancel()

	if _, err := gazereplay.Run(ctx, &gazereplay.Config{
		BaseURL:    *baseURL,
		Shape:      sh,
		Samples:    *samples,
		Rate:       *rate,
		Seed:       *seed,
		Timeout:    *timeout,
		OutputFile: *output,
		Verbose:    *verbose,
	}); err != nil {
		logger.Get().Error(ctx, "replay failed", logger.Error(err))
		os.Exit(1)
	}
}

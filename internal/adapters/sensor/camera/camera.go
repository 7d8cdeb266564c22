// Package camera is a webcam gaze source backed by OpenCV's YuNet face detector.
package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/okian/eyeflow/internal/adapters/sensor"
	"github.com/okian/eyeflow/pkg/logger"
	"github.com/okian/eyeflow/pkg/metrics"
)

const (
	defaultInterval  = 33 * time.Millisecond
	defaultMinScore  = 0.5
	nmsThreshold     = 0.3
	topK             = 5000
	initialInputSize = 320

	// YuNet rows: box (0-3), five landmarks as x,y pairs (4-13), score (14).
	// The first two landmarks are the eyes.
	colBoxX   = 0
	colBoxY   = 1
	colBoxW   = 2
	colBoxH   = 3
	colEye1X  = 4
	colEye1Y  = 5
	colEye2X  = 6
	colEye2Y  = 7
	colScore  = 14
	faceWidth = 15
)

// Config describes the capture device and detector model.
type Config struct {
	Device    int
	ModelPath string
	MinScore  float64
	Interval  time.Duration
}

// Source reads frames from a camera and publishes one gaze sample per frame
// in which a face was found.
type Source struct {
	*sensor.Broadcaster

	cfg      Config
	capture  *gocv.VideoCapture
	detector gocv.FaceDetectorYN
	log      logger.Logger

	mu     sync.Mutex
	closed bool
}

var _ sensor.Sensor = (*Source)(nil)

// New opens the device and loads the detector model.
func New(cfg Config) (*Source, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = defaultMinScore
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", sensor.ErrSensorUnavailable, cfg.ModelPath, err)
	}

	capture, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: open camera %d: %v", sensor.ErrSensorUnavailable, cfg.Device, err)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(initialInputSize, initialInputSize),
		float32(cfg.MinScore),
		nmsThreshold,
		topK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &Source{
		Broadcaster: sensor.NewBroadcaster("camera"),
		cfg:         cfg,
		capture:     capture,
		detector:    detector,
		log:         logger.Named("camera"),
	}, nil
}

// Run captures frames until ctx ends or the camera stops delivering.
func (s *Source) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()
	faces := gocv.NewMat()
	defer faces.Close()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info(ctx, "camera started",
		logger.Int("device", s.cfg.Device),
		logger.String("model", s.cfg.ModelPath),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !s.read(&frame) {
			metrics.RecordErrorByComponent("camera", "read_failed")
			return fmt.Errorf("%w: camera %d stopped delivering frames", sensor.ErrSensorUnavailable, s.cfg.Device)
		}
		if frame.Empty() {
			continue
		}

		found := s.detect(frame, &faces)
		metrics.RecordSensorFrame(len(found) > 0)

		if g, ok := sensor.GazeFromFaces(found); ok {
			s.Publish(g)
		}
	}
}

func (s *Source) read(frame *gocv.Mat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.capture.Read(frame)
}

func (s *Source) detect(frame gocv.Mat, faces *gocv.Mat) []sensor.Face {
	w := float64(frame.Cols())
	h := float64(frame.Rows())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.detector.SetInputSize(image.Pt(frame.Cols(), frame.Rows()))
	s.detector.Detect(frame, faces)

	if faces.Cols() < faceWidth {
		return nil
	}
	out := make([]sensor.Face, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		at := func(c int) float64 { return float64(faces.GetFloatAt(r, c)) }
		out = append(out, sensor.Face{
			X:        at(colBoxX) / w,
			Y:        at(colBoxY) / h,
			W:        at(colBoxW) / w,
			H:        at(colBoxH) / h,
			Score:    at(colScore),
			LeftEye:  sensor.Point{X: at(colEye1X) / w, Y: at(colEye1Y) / h},
			RightEye: sensor.Point{X: at(colEye2X) / w, Y: at(colEye2Y) / h},
		})
	}
	return out
}

// Close releases the camera and the detector. It is safe to call twice.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.detector.Close()
	if err := s.capture.Close(); err != nil {
		return fmt.Errorf("close camera: %w", err)
	}
	return nil
}

package gaze

import (
	"context"
	"sync"
	"time"

	"github.com/avolkv/headsup/internal/event"
)

// Thresholds carries one threshold per backend signal space. No unified unit
// exists: pitch is degrees, gaze is a viewport fraction.
type Thresholds struct {
	Pitch float64
	Gaze  float64
}

// DefaultThresholds returns the stock calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{Pitch: 15, Gaze: 0.75}
}

// Config tunes the detector.
type Config struct {
	Thresholds Thresholds

	// SmoothingFactor is the EMA weight of the newest sample, in (0,1].
	// 1 disables smoothing.
	SmoothingFactor float64

	// MinConfidence drops samples below this confidence. Zero keeps all.
	MinConfidence float64
}

// DefaultConfig returns the stock detector tuning.
func DefaultConfig() Config {
	return Config{
		Thresholds:      DefaultThresholds(),
		SmoothingFactor: 0.3,
	}
}

// Detector folds asynchronous sensor samples into a binary look state with
// per-backend smoothing. Transition events are edge-triggered; a sample
// event fires on every reading for live feedback.
type Detector struct {
	bus *event.Bus
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	down     bool
	smoothed map[Backend]float64
	seeded   map[Backend]bool

	sensor  Sensor
	enabled bool
}

// NewDetector returns a detector publishing on bus.
func NewDetector(bus *event.Bus, sensor Sensor, cfg Config) *Detector {
	if cfg.SmoothingFactor <= 0 || cfg.SmoothingFactor > 1 {
		cfg.SmoothingFactor = DefaultConfig().SmoothingFactor
	}
	d := &Detector{
		bus:      bus,
		cfg:      cfg,
		now:      time.Now,
		smoothed: map[Backend]float64{},
		seeded:   map[Backend]bool{},
		sensor:   sensor,
	}
	if sensor != nil {
		sensor.OnSample(d.Observe)
	}
	return d
}

// Enable starts the sensor. Acquisition failure comes back as (false, err)
// and is also announced on the bus; it never crashes the pipeline.
func (d *Detector) Enable(ctx context.Context) (bool, error) {
	if d.sensor == nil {
		return false, nil
	}
	ok, err := d.sensor.Enable(ctx)
	payload := event.CameraStatePayload{Enabled: ok}
	if err != nil {
		payload.Err = err.Error()
	}
	d.mu.Lock()
	d.enabled = ok
	d.mu.Unlock()
	d.bus.Emit(event.TopicCameraState, payload)
	return ok, err
}

// Disable synchronously stops the sensor and resets the look state so the
// next enable starts from LookingUp.
func (d *Detector) Disable() {
	if d.sensor != nil {
		d.sensor.Disable()
	}
	d.mu.Lock()
	d.enabled = false
	d.down = false
	d.smoothed = map[Backend]float64{}
	d.seeded = map[Backend]bool{}
	d.mu.Unlock()
	d.bus.Emit(event.TopicCameraState, event.CameraStatePayload{Enabled: false})
}

// IsEnabled reports whether the sensor is currently delivering samples.
func (d *Detector) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// IsLookingDown reports the current look state.
func (d *Detector) IsLookingDown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.down
}

// Observe processes one sample: smooth, threshold, and fire transitions on
// edges only.
func (d *Detector) Observe(s Sample) {
	if d.cfg.MinConfidence > 0 && s.Confidence < d.cfg.MinConfidence {
		return
	}

	d.mu.Lock()
	alpha := d.cfg.SmoothingFactor
	prev, seeded := d.smoothed[s.Backend], d.seeded[s.Backend]
	smoothed := s.Value
	if seeded {
		smoothed = alpha*s.Value + (1-alpha)*prev
	}
	d.smoothed[s.Backend] = smoothed
	d.seeded[s.Backend] = true

	past := smoothed >= d.threshold(s.Backend)
	wasDown := d.down
	d.down = past
	d.mu.Unlock()

	d.bus.Emit(event.TopicGazeSample, event.GazeSamplePayload{
		Backend:  string(s.Backend),
		Raw:      s.Value,
		Smoothed: smoothed,
		Down:     past,
	})

	switch {
	case past && !wasDown:
		d.bus.Emit(event.TopicLookingDown, event.LookPayload{
			Backend:  string(s.Backend),
			Smoothed: smoothed,
			At:       d.now(),
		})
	case !past && wasDown:
		d.bus.Emit(event.TopicLookingUp, event.LookPayload{
			Backend:  string(s.Backend),
			Smoothed: smoothed,
			At:       d.now(),
		})
	}
}

func (d *Detector) threshold(b Backend) float64 {
	if b == BackendGaze {
		return d.cfg.Thresholds.Gaze
	}
	return d.cfg.Thresholds.Pitch
}

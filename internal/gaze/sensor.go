// Package gaze normalizes head/gaze tracker samples into an edge-triggered
// looking-down state machine.
//
// The tracker itself is a black box behind the Sensor interface: the package
// only smooths its continuous signal and detects threshold crossings. Two
// calibrated signal spaces exist, one per backend: head pitch in degrees and
// gaze position as a 0-1 viewport fraction. Sensors normalize their signal so
// that a larger value always means "looking further down".
package gaze

import (
	"context"
	"sync"
)

// Backend identifies the sensor's signal space.
type Backend string

const (
	// BackendPitch delivers head pitch in degrees.
	BackendPitch Backend = "pitch"

	// BackendGaze delivers gaze Y as a viewport fraction in [0,1].
	BackendGaze Backend = "gaze"
)

// Sample is one tracker reading.
type Sample struct {
	Backend    Backend `json:"backend"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// SampleFunc receives sensor samples.
type SampleFunc func(Sample)

// Sensor is the injected tracker capability. Enable reports acquisition
// failure as a result, never a panic; Disable synchronously stops sample
// delivery and releases the device.
type Sensor interface {
	Enable(ctx context.Context) (bool, error)
	Disable()
	OnSample(fn SampleFunc)
}

// FuncSensor is a deterministic in-process sensor used by tests and the
// detector wiring. Push delivers a sample to the registered callback while
// the sensor is enabled.
type FuncSensor struct {
	mu        sync.Mutex
	enabled   bool
	fn        SampleFunc
	EnableOK  bool
	EnableErr error
}

// NewFuncSensor returns a sensor that enables successfully.
func NewFuncSensor() *FuncSensor {
	return &FuncSensor{EnableOK: true}
}

// Enable implements Sensor.
func (s *FuncSensor) Enable(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EnableErr != nil || !s.EnableOK {
		return false, s.EnableErr
	}
	s.enabled = true
	return true, nil
}

// Disable implements Sensor.
func (s *FuncSensor) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
}

// OnSample implements Sensor.
func (s *FuncSensor) OnSample(fn SampleFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

// Push delivers one sample. Dropped when the sensor is disabled.
func (s *FuncSensor) Push(sample Sample) {
	s.mu.Lock()
	fn := s.fn
	enabled := s.enabled
	s.mu.Unlock()
	if enabled && fn != nil {
		fn(sample)
	}
}

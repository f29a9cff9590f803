package gaze

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// replayFrame is one line of a replay file: a sample plus the delay before
// delivering it.
type replayFrame struct {
	Sample
	DelayMs int64 `json:"delayMs"`
}

// ReplaySensor plays back tracker samples from a JSONL file. It stands in
// for a live tracker in demos and integration tests.
type ReplaySensor struct {
	path string

	mu      sync.Mutex
	fn      SampleFunc
	enabled bool
	stop    chan struct{}
	done    sync.WaitGroup
}

// NewReplaySensor returns a sensor reading frames from path.
func NewReplaySensor(path string) *ReplaySensor {
	return &ReplaySensor{path: path}
}

// OnSample implements Sensor.
func (s *ReplaySensor) OnSample(fn SampleFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

// Enable implements Sensor. The whole file is parsed up front so malformed
// input surfaces here instead of mid-playback.
func (s *ReplaySensor) Enable(ctx context.Context) (bool, error) {
	frames, err := loadFrames(s.path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.enabled {
		s.mu.Unlock()
		return true, nil
	}
	s.enabled = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		for _, frame := range frames {
			if frame.DelayMs > 0 {
				select {
				case <-time.After(time.Duration(frame.DelayMs) * time.Millisecond):
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}
			s.deliver(frame.Sample)
		}
	}()
	return true, nil
}

// Disable implements Sensor. Delivery halts before Disable returns.
func (s *ReplaySensor) Disable() {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = false
	close(s.stop)
	s.mu.Unlock()
	s.done.Wait()
}

func (s *ReplaySensor) deliver(sample Sample) {
	s.mu.Lock()
	fn := s.fn
	enabled := s.enabled
	s.mu.Unlock()
	if enabled && fn != nil {
		fn(sample)
	}
}

func loadFrames(path string) ([]replayFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only replay file.
			_ = cerr
		}
	}()

	var frames []replayFrame
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var frame replayFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		if frame.Backend == "" {
			frame.Backend = BackendPitch
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	return frames, nil
}

package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock is an interface for reading simulation time. Components such
// as terrain samplers depend on it rather than on the frame clock itself.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Mode describes how the FrameClock advances simulation time.
type Mode int

const (
	// RealTime emits one frame per wall-clock Frame interval.
	RealTime Mode = iota
	// Accelerated emits frames back to back, still stepping by Frame.
	Accelerated
)

func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "realtime"
}

// FrameClock is the per-frame scheduling signal. Every frame advances
// simulation time by Frame and invokes the registered listeners in order,
// synchronously, on the goroutine that produced the frame.
type FrameClock struct {
	mu        sync.RWMutex
	StartTime time.Time
	Frame     time.Duration
	Mode      Mode

	currentTime time.Time
	frames      uint64

	listeners []func(time.Time)
}

// NewFrameClock constructs a clock positioned at start.
func NewFrameClock(start time.Time, frame time.Duration, mode Mode) *FrameClock {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &FrameClock{
		StartTime:   start,
		Frame:       frame,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (fc *FrameClock) Now() time.Time {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.currentTime
}

// Frames returns the number of frames emitted so far.
func (fc *FrameClock) Frames() uint64 {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.frames
}

// AddListener registers a callback invoked on every frame. Listeners must
// be registered before Run or Step is called.
func (fc *FrameClock) AddListener(fn func(time.Time)) {
	fc.listeners = append(fc.listeners, fn)
}

// Step emits a single frame and returns its simulation time.
func (fc *FrameClock) Step() time.Time {
	fc.mu.Lock()
	fc.currentTime = fc.currentTime.Add(fc.Frame)
	fc.frames++
	now := fc.currentTime
	fc.mu.Unlock()

	for _, fn := range fc.listeners {
		fn(now)
	}
	return now
}

// Run emits frames in a separate goroutine until ctx is cancelled or
// duration of simulation time has elapsed (0 means no limit). It returns a
// channel that is closed when the clock stops.
func (fc *FrameClock) Run(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var tick <-chan time.Time
		if fc.Mode == RealTime {
			ticker := time.NewTicker(fc.Frame)
			defer ticker.Stop()
			tick = ticker.C
		}

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if tick != nil {
				select {
				case <-ctx.Done():
					return
				case <-tick:
				}
			}

			fc.Step()
			elapsed += fc.Frame
		}
	}()
	return done
}

// Package gesture turns streamed IMU samples into discrete gesture events
// using a sliding-window magnitude-spike classifier.
package gesture

import (
	"fmt"
	"time"

	"github.com/akshayakula/myogen/pkg/protocol"
)

// Config holds the detector's device-calibration constants. The thresholds
// are raw IMU LSB units tuned against one physical rig; load them from the
// calibration file rather than assuming they generalize.
type Config struct {
	GyroThreshold  float64
	AccelThreshold float64
	Cooldown       time.Duration
	WindowSize     int
}

// DefaultConfig returns the stock rig tuning.
func DefaultConfig() Config {
	return Config{
		GyroThreshold:  15000,
		AccelThreshold: 8000,
		Cooldown:       time.Second,
		WindowSize:     20,
	}
}

// baselineSamples is how many prior gyro magnitudes feed the baseline mean.
const baselineSamples = 5

// minSamples is the fewest readings required before detection can fire.
const minSamples = 3

// Event is one detected gesture: the triggering sample plus the magnitudes
// that fired it.
type Event struct {
	Frame    protocol.TelemetryFrame
	GyroMag  float64
	AccelMag float64
	Baseline float64
}

// Detector classifies spikes against a short rolling baseline, so a quick
// flick fires against a calm wrist while sustained motion like walking does
// not. Events are rate-limited by a cooldown. Not safe for concurrent use;
// a detector belongs to exactly one session's receive path.
type Detector struct {
	cfg Config

	window []float64 // gyro magnitudes, oldest first
	total  uint64

	fired     bool
	lastEvent uint32 // device ms of last accepted event

	detected uint64
}

// NewDetector validates the configuration and builds a detector.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.WindowSize < minSamples {
		return nil, fmt.Errorf("gesture: window size %d below minimum %d", cfg.WindowSize, minSamples)
	}
	if cfg.GyroThreshold <= 0 || cfg.AccelThreshold <= 0 {
		return nil, fmt.Errorf("gesture: thresholds must be positive")
	}
	return &Detector{
		cfg:    cfg,
		window: make([]float64, 0, cfg.WindowSize),
	}, nil
}

// Process consumes one telemetry frame and reports whether it completed a
// gesture. The returned Event is only meaningful when ok is true.
func (d *Detector) Process(frame protocol.TelemetryFrame) (Event, bool) {
	gyroMag := frame.GyroMagnitude()

	if len(d.window) == d.cfg.WindowSize {
		copy(d.window, d.window[1:])
		d.window = d.window[:len(d.window)-1]
	}
	d.window = append(d.window, gyroMag)
	d.total++

	if d.total < minSamples {
		return Event{}, false
	}
	if d.fired && frame.Timestamp-d.lastEvent < uint32(d.cfg.Cooldown/time.Millisecond) {
		return Event{}, false
	}

	// Baseline is the mean of up to the last 5 magnitudes before this one.
	prior := d.window[:len(d.window)-1]
	if len(prior) > baselineSamples {
		prior = prior[len(prior)-baselineSamples:]
	}
	var sum float64
	for _, m := range prior {
		sum += m
	}
	baseline := sum / float64(len(prior))

	accelMag := frame.AccelMagnitude()
	gyroSpike := gyroMag > d.cfg.GyroThreshold && gyroMag > baseline*3
	accelSpike := accelMag > d.cfg.AccelThreshold
	if !gyroSpike || !accelSpike {
		return Event{}, false
	}

	d.fired = true
	d.lastEvent = frame.Timestamp
	d.detected++
	return Event{Frame: frame, GyroMag: gyroMag, AccelMag: accelMag, Baseline: baseline}, true
}

// Detected returns how many gestures have been accepted so far.
func (d *Detector) Detected() uint64 {
	return d.detected
}

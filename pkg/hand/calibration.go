package hand

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Calibration is the on-disk tuning file for one physical rig. Every value
// here is empirical device calibration, not an algorithmic contract: rigs
// with different servos or IMUs are expected to ship different numbers.
type Calibration struct {
	Joints    []JointCalibration `toml:"joints"`
	Smoothing SmoothingCal       `toml:"smoothing"`
	Gesture   GestureCal         `toml:"gesture"`
	Vision    VisionCal          `toml:"vision"`
}

// JointCalibration is one joint's range and mounting direction.
type JointCalibration struct {
	Name     string `toml:"name"`
	Min      int    `toml:"min"`
	Max      int    `toml:"max"`
	Inverted bool   `toml:"inverted"`
}

// SmoothingCal tunes the pose smoother.
type SmoothingCal struct {
	Factor          float64 `toml:"factor"`
	ChangeThreshold int     `toml:"change_threshold"`
	TickMs          int     `toml:"tick_ms"`
}

// GestureCal tunes the gesture detector in raw IMU LSB units.
type GestureCal struct {
	GyroThreshold  float64 `toml:"gyro_threshold"`
	AccelThreshold float64 `toml:"accel_threshold"`
	CooldownMs     int     `toml:"cooldown_ms"`
	WindowSize     int     `toml:"window_size"`
}

// VisionCal carries the empirically-tuned multipliers used by the external
// vision mapper. They are preserved here for operators but nothing in the
// core pipeline interprets them.
type VisionCal struct {
	ThumbSensitivity float64 `toml:"thumb_sensitivity"`
	SnapFraction     float64 `toml:"snap_fraction"`
}

// DefaultCalibration returns the stock uHand tuning.
func DefaultCalibration() Calibration {
	limits := DefaultLimits()
	joints := make([]JointCalibration, NumJoints)
	for i := 0; i < NumJoints; i++ {
		lim := limits.Joint(i)
		joints[i] = JointCalibration{Name: JointName(i), Min: lim.Min, Max: lim.Max, Inverted: lim.Inverted}
	}
	return Calibration{
		Joints:    joints,
		Smoothing: SmoothingCal{Factor: 0.2, ChangeThreshold: 1, TickMs: 20},
		Gesture:   GestureCal{GyroThreshold: 15000, AccelThreshold: 8000, CooldownMs: 1000, WindowSize: 20},
		Vision:    VisionCal{ThumbSensitivity: 5.0, SnapFraction: 0.25},
	}
}

// LoadCalibration reads a TOML calibration file.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()
	if _, err := toml.DecodeFile(path, &cal); err != nil {
		return cal, fmt.Errorf("load calibration: %w", err)
	}
	if len(cal.Joints) != NumJoints {
		return cal, fmt.Errorf("load calibration: expected %d joints, got %d", NumJoints, len(cal.Joints))
	}
	return cal, nil
}

// Save writes the calibration as TOML.
func (c Calibration) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save calibration: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("save calibration: %w", err)
	}
	return nil
}

// Limits converts the calibrated joint table into an immutable Limits.
func (c Calibration) Limits() (*Limits, error) {
	joints := make([]JointLimit, len(c.Joints))
	for i, j := range c.Joints {
		joints[i] = JointLimit{Min: j.Min, Max: j.Max, Inverted: j.Inverted}
	}
	return NewLimits(joints)
}

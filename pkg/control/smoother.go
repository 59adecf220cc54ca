// Package control owns the per-session actuator pipeline: a smoothing,
// rate-limited send loop and a reactive telemetry receive path.
package control

import (
	"fmt"
	"math"

	"github.com/akshayakula/myogen/pkg/hand"
)

// SmootherConfig tunes the pose smoother.
type SmootherConfig struct {
	// Factor is the exponential low-pass coefficient. Higher tracks the
	// target faster but passes more jitter through; useful range is about
	// 0.05 to 0.3.
	Factor float64

	// ChangeThreshold is the minimum per-joint delta in degrees before a
	// joint counts as moved. Raise it to suppress micro-jitter.
	ChangeThreshold int
}

// DefaultSmootherConfig returns the stock tuning.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{Factor: 0.2, ChangeThreshold: 1}
}

// Smoother converts noisy, high-frequency target poses into a low-jitter,
// bandwidth-bounded stream of dispatch poses. Two gates stand between a
// target update and the wire: the caller's fixed tick interval, and a
// per-joint minimum-change threshold. A 30fps vision pipeline can set
// targets as fast as it likes; at most one pose goes out per tick, and
// none at all while the hand is effectively still.
//
// Not safe for concurrent use; a smoother is owned by one session.
type Smoother struct {
	limits    *hand.Limits
	factor    float64
	threshold int

	acc        [hand.NumJoints]float64
	target     hand.Pose
	dispatched hand.Pose
}

// NewSmoother builds a smoother starting at the neutral pose.
func NewSmoother(limits *hand.Limits, cfg SmootherConfig) (*Smoother, error) {
	if cfg.Factor <= 0 || cfg.Factor > 1 {
		return nil, fmt.Errorf("%w: smoothing factor %v outside (0,1]", ErrConfig, cfg.Factor)
	}
	if cfg.ChangeThreshold < 1 {
		return nil, fmt.Errorf("%w: change threshold %d below 1", ErrConfig, cfg.ChangeThreshold)
	}
	s := &Smoother{
		limits:    limits,
		factor:    cfg.Factor,
		threshold: cfg.ChangeThreshold,
	}
	neutral := limits.ClampPose(hand.Neutral())
	s.target = neutral
	s.dispatched = neutral
	for i, angle := range neutral {
		s.acc[i] = float64(angle)
	}
	return s, nil
}

// SetTarget stores the raw target pose. It has no effect until the next
// tick.
func (s *Smoother) SetTarget(p hand.Pose) {
	s.target = p
}

// Target returns the current raw target.
func (s *Smoother) Target() hand.Pose {
	return s.target
}

// Dispatched returns the last pose marked for dispatch.
func (s *Smoother) Dispatched() hand.Pose {
	return s.dispatched
}

// Tick advances every joint's accumulator toward the target and reports
// whether a dispatch is due. Joints that moved less than the change
// threshold keep their previously dispatched angle, so the returned pose
// is always wire-ready.
func (s *Smoother) Tick() (hand.Pose, bool) {
	changed := false
	for i := range s.acc {
		s.acc[i] += s.factor * (float64(s.target[i]) - s.acc[i])
		angle := s.limits.Clamp(i, int(math.Round(s.acc[i])))
		if abs(angle-s.dispatched[i]) >= s.threshold {
			s.dispatched[i] = angle
			changed = true
		}
	}
	return s.dispatched, changed
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

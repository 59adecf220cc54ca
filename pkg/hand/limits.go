// Package hand models the six-joint end effector: per-joint angle limits,
// poses, named presets, and pose sources that are not vision-driven.
package hand

import (
	"fmt"

	"github.com/akshayakula/myogen/internal/log"
)

// Joint indices within a Pose, matching servo IDs 1-6 on the hand.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	Wrist
)

// NumJoints is the number of actuators in the device profile.
const NumJoints = 6

// jointNames is indexed by joint constant.
var jointNames = [NumJoints]string{"thumb", "index", "middle", "ring", "pinky", "wrist"}

// JointName returns the human-readable name for a joint index.
func JointName(joint int) string {
	if joint < 0 || joint >= NumJoints {
		return fmt.Sprintf("joint%d", joint)
	}
	return jointNames[joint]
}

// JointLimit is the valid angle range for one joint. Inverted joints have
// their servo mounted backwards, so the wire value runs opposite to the
// logical angle.
type JointLimit struct {
	Min      int
	Max      int
	Inverted bool
}

// Limits holds the per-joint range and inversion table. Immutable after
// construction and safe for concurrent reads.
type Limits struct {
	joints [NumJoints]JointLimit
}

// DefaultLimits returns the stock uHand limits: all joints 0-180 except the
// ring finger (25-180), with thumb and wrist servos inverted.
func DefaultLimits() *Limits {
	return &Limits{joints: [NumJoints]JointLimit{
		{Min: 0, Max: 180, Inverted: true},  // thumb
		{Min: 0, Max: 180},                  // index
		{Min: 0, Max: 180},                  // middle
		{Min: 25, Max: 180},                 // ring
		{Min: 0, Max: 180},                  // pinky
		{Min: 0, Max: 180, Inverted: true},  // wrist
	}}
}

// NewLimits builds a Limits table from explicit per-joint entries.
// Exactly NumJoints entries are required, each with Min < Max.
func NewLimits(joints []JointLimit) (*Limits, error) {
	if len(joints) != NumJoints {
		return nil, fmt.Errorf("hand: expected %d joint limits, got %d", NumJoints, len(joints))
	}
	l := &Limits{}
	for i, j := range joints {
		if j.Min >= j.Max {
			return nil, fmt.Errorf("hand: %s limit min %d >= max %d", JointName(i), j.Min, j.Max)
		}
		l.joints[i] = j
	}
	return l, nil
}

// Joint returns the limit entry for a joint index.
func (l *Limits) Joint(joint int) JointLimit {
	return l.joints[joint]
}

// Clamp restricts angle to the joint's valid range. Out-of-range input is
// logged at debug level and clamped, never rejected.
func (l *Limits) Clamp(joint, angle int) int {
	lim := l.joints[joint]
	if angle < lim.Min {
		log.Debug("angle below limit, clamping", "joint", JointName(joint), "angle", angle, "min", lim.Min)
		return lim.Min
	}
	if angle > lim.Max {
		log.Debug("angle above limit, clamping", "joint", JointName(joint), "angle", angle, "max", lim.Max)
		return lim.Max
	}
	return angle
}

// ClampPose clamps every joint of p.
func (l *Limits) ClampPose(p Pose) Pose {
	for i := range p {
		p[i] = l.Clamp(i, p[i])
	}
	return p
}

// WireValue converts a logical angle to the value sent on the wire,
// clamping first and applying inversion for backwards-mounted servos:
// wire = max - (angle - min).
func (l *Limits) WireValue(joint, angle int) int {
	angle = l.Clamp(joint, angle)
	lim := l.joints[joint]
	if lim.Inverted {
		return lim.Max - (angle - lim.Min)
	}
	return angle
}

// FromWire converts a wire value back to a logical angle, undoing inversion.
func (l *Limits) FromWire(joint, wire int) int {
	lim := l.joints[joint]
	if lim.Inverted {
		wire = lim.Max - wire + lim.Min
	}
	return l.Clamp(joint, wire)
}

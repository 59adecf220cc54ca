package hand

import (
	"fmt"
	"sort"
)

// Pose is an ordered vector of per-joint target angles in integer degrees.
// It is a value type: handing a Pose to the pipeline cannot mutate the
// caller's copy.
type Pose [NumJoints]int

// NewPose builds a Pose from a slice, enforcing the device joint count.
func NewPose(angles []int) (Pose, error) {
	var p Pose
	if len(angles) != NumJoints {
		return p, fmt.Errorf("hand: pose needs %d angles, got %d", NumJoints, len(angles))
	}
	copy(p[:], angles)
	return p, nil
}

// Neutral returns the resting pose, 90 degrees on every joint.
func Neutral() Pose {
	return Pose{90, 90, 90, 90, 90, 90}
}

// String renders the pose as "[90 90 90 90 90 90]".
func (p Pose) String() string {
	return fmt.Sprintf("%v", p[:])
}

// presets are the named literal poses from the device demos. The ring
// finger never goes below its 25 degree mechanical floor.
var presets = map[string]Pose{
	"neutral":  {90, 90, 90, 90, 90, 90},
	"open":     {90, 0, 0, 25, 0, 90},
	"closed":   {90, 160, 160, 160, 160, 90},
	"thumbsUp": {0, 160, 0, 25, 0, 90},
	"peace":    {90, 0, 160, 25, 160, 90},
	"point":    {90, 0, 160, 160, 160, 90},
	"grasp":    {90, 120, 120, 120, 120, 90},
}

// Preset looks up a named pose.
func Preset(name string) (Pose, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns all preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

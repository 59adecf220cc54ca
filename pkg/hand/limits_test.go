package hand

import (
	"testing"
)

func TestDefaultLimits_Clamp(t *testing.T) {
	limits := DefaultLimits()

	if got := limits.Clamp(Index, 200); got != 180 {
		t.Errorf("index over max: got %d, want 180", got)
	}
	if got := limits.Clamp(Index, -5); got != 0 {
		t.Errorf("index under min: got %d, want 0", got)
	}
	if got := limits.Clamp(Ring, 0); got != 25 {
		t.Errorf("ring under mechanical floor: got %d, want 25", got)
	}
	if got := limits.Clamp(Wrist, 90); got != 90 {
		t.Errorf("in-range angle changed: got %d", got)
	}
}

func TestLimits_WireValueInversion(t *testing.T) {
	limits := DefaultLimits()

	// Thumb and wrist servos are mounted backwards: 0 degrees logical is
	// 180 on the wire and vice versa.
	if got := limits.WireValue(Thumb, 0); got != 180 {
		t.Errorf("thumb 0: got wire %d, want 180", got)
	}
	if got := limits.WireValue(Thumb, 180); got != 0 {
		t.Errorf("thumb 180: got wire %d, want 0", got)
	}
	if got := limits.WireValue(Wrist, 90); got != 90 {
		t.Errorf("wrist 90: got wire %d, want 90", got)
	}
	// Non-inverted joints pass straight through.
	if got := limits.WireValue(Middle, 45); got != 45 {
		t.Errorf("middle 45: got wire %d, want 45", got)
	}
}

func TestLimits_WireValueClampsFirst(t *testing.T) {
	limits := DefaultLimits()
	// 300 clamps to 180 before inversion, so the wire value is 0, not
	// negative.
	if got := limits.WireValue(Thumb, 300); got != 0 {
		t.Errorf("thumb 300: got wire %d, want 0", got)
	}
}

func TestLimits_FromWireRoundTrip(t *testing.T) {
	limits := DefaultLimits()
	for joint := 0; joint < NumJoints; joint++ {
		lim := limits.Joint(joint)
		for angle := lim.Min; angle <= lim.Max; angle += 5 {
			wire := limits.WireValue(joint, angle)
			if back := limits.FromWire(joint, wire); back != angle {
				t.Errorf("%s: %d -> wire %d -> %d", JointName(joint), angle, wire, back)
			}
		}
	}
}

func TestNewLimits_Validation(t *testing.T) {
	if _, err := NewLimits([]JointLimit{{Min: 0, Max: 180}}); err == nil {
		t.Error("short limit table accepted")
	}

	bad := make([]JointLimit, NumJoints)
	for i := range bad {
		bad[i] = JointLimit{Min: 0, Max: 180}
	}
	bad[Ring] = JointLimit{Min: 100, Max: 50}
	if _, err := NewLimits(bad); err == nil {
		t.Error("inverted min/max accepted")
	}
}

func TestNewPose(t *testing.T) {
	p, err := NewPose([]int{10, 20, 30, 40, 50, 60})
	if err != nil {
		t.Fatalf("valid pose rejected: %v", err)
	}
	if p[Wrist] != 60 {
		t.Errorf("wrist: got %d, want 60", p[Wrist])
	}
	if _, err := NewPose([]int{10, 20}); err == nil {
		t.Error("short angle slice accepted")
	}
}

func TestPresets(t *testing.T) {
	limits := DefaultLimits()
	for _, name := range PresetNames() {
		pose, ok := Preset(name)
		if !ok {
			t.Fatalf("preset %q missing", name)
		}
		if clamped := limits.ClampPose(pose); clamped != pose {
			t.Errorf("preset %q not within limits: %v vs %v", name, pose, clamped)
		}
	}
	if _, ok := Preset("jazzhands"); ok {
		t.Error("unknown preset resolved")
	}
}

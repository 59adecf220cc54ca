package hand

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCalibration_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand.toml")

	cal := DefaultCalibration()
	cal.Joints[Ring].Min = 30
	cal.Smoothing.Factor = 0.15
	cal.Gesture.GyroThreshold = 12000

	if err := cal.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Joints[Ring].Min != 30 {
		t.Errorf("ring min: got %d, want 30", loaded.Joints[Ring].Min)
	}
	if loaded.Smoothing.Factor != 0.15 {
		t.Errorf("smoothing factor: got %v, want 0.15", loaded.Smoothing.Factor)
	}
	if loaded.Gesture.GyroThreshold != 12000 {
		t.Errorf("gyro threshold: got %v, want 12000", loaded.Gesture.GyroThreshold)
	}
}

func TestCalibration_Limits(t *testing.T) {
	limits, err := DefaultCalibration().Limits()
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if got := limits.Joint(Ring); got.Min != 25 || got.Max != 180 {
		t.Errorf("ring limit: got %+v", got)
	}
	if !limits.Joint(Thumb).Inverted || !limits.Joint(Wrist).Inverted {
		t.Error("thumb and wrist should be inverted")
	}
}

func TestCalibration_LimitsRejectsBadJoint(t *testing.T) {
	cal := DefaultCalibration()
	cal.Joints[Index].Max = cal.Joints[Index].Min
	if _, err := cal.Limits(); err == nil {
		t.Error("degenerate joint range accepted")
	}
}

func TestLoadCalibration_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	content := "[gesture]\ngyro_threshold = 9000.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cal, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cal.Gesture.GyroThreshold != 9000 {
		t.Errorf("gyro threshold: got %v, want 9000", cal.Gesture.GyroThreshold)
	}
	// Everything the file omits stays at stock tuning.
	if cal.Smoothing.Factor != 0.2 {
		t.Errorf("smoothing factor default lost: %v", cal.Smoothing.Factor)
	}
	if len(cal.Joints) != NumJoints {
		t.Errorf("joint table default lost: %d entries", len(cal.Joints))
	}
}

func TestLoadCalibration_MissingFile(t *testing.T) {
	if _, err := LoadCalibration(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing file accepted")
	}
}

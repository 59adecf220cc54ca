package hub

import (
	"encoding/json"
	"testing"

	"github.com/akshayakula/myogen/pkg/gesture"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
)

func TestTelemetryEvent(t *testing.T) {
	frame := protocol.TelemetryFrame{GyroX: 3, GyroY: 4, AccelZ: 5, Timestamp: 42}
	evt := TelemetryEvent(frame)

	if evt.Type != EventTelemetry {
		t.Errorf("type: got %q", evt.Type)
	}
	if evt.Time == 0 {
		t.Error("event missing timestamp")
	}

	var data TelemetryData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if data.Gyro != [3]int16{3, 4, 0} {
		t.Errorf("gyro: got %v", data.Gyro)
	}
	if data.GyroMag != 5 { // 3-4-5 triangle
		t.Errorf("gyro magnitude: got %v, want 5", data.GyroMag)
	}
	if data.DeviceTS != 42 {
		t.Errorf("device timestamp: got %d", data.DeviceTS)
	}
}

func TestGestureEvent(t *testing.T) {
	evt := GestureEvent(gesture.Event{
		Frame:    protocol.TelemetryFrame{Timestamp: 7},
		GyroMag:  20000,
		Baseline: 150,
	})
	var data GestureData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if data.GyroMag != 20000 || data.Baseline != 150 || data.DeviceTS != 7 {
		t.Errorf("payload: got %+v", data)
	}
}

func TestPoseEvent(t *testing.T) {
	evt := PoseEvent(hand.Pose{1, 2, 3, 4, 5, 6})
	var data PoseData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(data.Angles) != hand.NumJoints || data.Angles[5] != 6 {
		t.Errorf("angles: got %v", data.Angles)
	}
}

func TestEvent_WireShape(t *testing.T) {
	raw, err := json.Marshal(PoseEvent(hand.Neutral()))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "ts", "data"} {
		if _, ok := m[key]; !ok {
			t.Errorf("envelope missing %q", key)
		}
	}
}

// Package hub fans hand events out to websocket subscribers using the
// channel-based broadcast pattern: one goroutine owns the client set, and
// slow clients are dropped rather than allowed to stall the pipeline.
package hub

import (
	"encoding/json"
	"time"

	"github.com/akshayakula/myogen/pkg/gesture"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
)

// EventType labels an outbound event.
type EventType string

const (
	// EventTelemetry carries one decoded IMU sample.
	EventTelemetry EventType = "telemetry"
	// EventGesture carries one detected gesture.
	EventGesture EventType = "gesture"
	// EventPose carries one dispatched pose.
	EventPose EventType = "pose"
	// EventStatus carries a session status snapshot.
	EventStatus EventType = "status"
)

// Event is the JSON envelope pushed to subscribers.
type Event struct {
	Type EventType       `json:"type"`
	Time int64           `json:"ts"` // Unix milliseconds
	Data json.RawMessage `json:"data,omitempty"`
}

// TelemetryData is the payload of an EventTelemetry.
type TelemetryData struct {
	Gyro     [3]int16 `json:"gyro"`
	Accel    [3]int16 `json:"accel"`
	GyroMag  float64  `json:"gyro_mag"`
	AccelMag float64  `json:"accel_mag"`
	DeviceTS uint32   `json:"device_ts"`
}

// GestureData is the payload of an EventGesture.
type GestureData struct {
	GyroMag  float64 `json:"gyro_mag"`
	AccelMag float64 `json:"accel_mag"`
	Baseline float64 `json:"baseline"`
	DeviceTS uint32  `json:"device_ts"`
}

// PoseData is the payload of an EventPose.
type PoseData struct {
	Angles []int `json:"angles"`
}

// StatusData is the payload of an EventStatus.
type StatusData struct {
	SessionID string `json:"session_id"`
	Connected bool   `json:"connected"`
	Animation string `json:"animation,omitempty"`
}

// NewEvent wraps a payload in the event envelope. Marshal failures cannot
// happen for the payload types above, so they degrade to an empty data
// field.
func NewEvent(eventType EventType, payload any) Event {
	data, _ := json.Marshal(payload)
	return Event{Type: eventType, Time: time.Now().UnixMilli(), Data: data}
}

// TelemetryEvent builds an EventTelemetry from a decoded frame.
func TelemetryEvent(t protocol.TelemetryFrame) Event {
	return NewEvent(EventTelemetry, TelemetryData{
		Gyro:     [3]int16{t.GyroX, t.GyroY, t.GyroZ},
		Accel:    [3]int16{t.AccelX, t.AccelY, t.AccelZ},
		GyroMag:  t.GyroMagnitude(),
		AccelMag: t.AccelMagnitude(),
		DeviceTS: t.Timestamp,
	})
}

// GestureEvent builds an EventGesture from a detector event.
func GestureEvent(e gesture.Event) Event {
	return NewEvent(EventGesture, GestureData{
		GyroMag:  e.GyroMag,
		AccelMag: e.AccelMag,
		Baseline: e.Baseline,
		DeviceTS: e.Frame.Timestamp,
	})
}

// PoseEvent builds an EventPose from a dispatched pose.
func PoseEvent(p hand.Pose) Event {
	return NewEvent(EventPose, PoseData{Angles: p[:]})
}

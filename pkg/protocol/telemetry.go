package protocol

import (
	"encoding/binary"
	"math"
)

// Telemetry payload sizes. Older firmware omits the trailing timestamp.
const (
	telemetryIMUBytes = 12
	telemetryBytes    = 16
)

// TelemetryFrame is one decoded IMU sample: raw 3-axis gyro and
// accelerometer readings plus the device's monotonic millisecond clock.
type TelemetryFrame struct {
	GyroX, GyroY, GyroZ    int16
	AccelX, AccelY, AccelZ int16

	// Timestamp is device-monotonic milliseconds. Zero when the firmware
	// sent a legacy 12-byte payload; the session stamps those from the
	// host clock before handing them on.
	Timestamp uint32
}

// GyroMagnitude returns the magnitude of the gyro vector.
func (t TelemetryFrame) GyroMagnitude() float64 {
	gx, gy, gz := float64(t.GyroX), float64(t.GyroY), float64(t.GyroZ)
	return math.Sqrt(gx*gx + gy*gy + gz*gz)
}

// AccelMagnitude returns the magnitude of the accelerometer vector.
func (t TelemetryFrame) AccelMagnitude() float64 {
	ax, ay, az := float64(t.AccelX), float64(t.AccelY), float64(t.AccelZ)
	return math.Sqrt(ax*ax + ay*ay + az*az)
}

// payload encodes the 16-byte telemetry payload, little-endian.
func (t TelemetryFrame) payload() []byte {
	buf := make([]byte, telemetryBytes)
	binary.LittleEndian.PutUint16(buf[0:], uint16(t.GyroX))
	binary.LittleEndian.PutUint16(buf[2:], uint16(t.GyroY))
	binary.LittleEndian.PutUint16(buf[4:], uint16(t.GyroZ))
	binary.LittleEndian.PutUint16(buf[6:], uint16(t.AccelX))
	binary.LittleEndian.PutUint16(buf[8:], uint16(t.AccelY))
	binary.LittleEndian.PutUint16(buf[10:], uint16(t.AccelZ))
	binary.LittleEndian.PutUint32(buf[12:], t.Timestamp)
	return buf
}

// EncodeTelemetry builds a complete telemetry frame under the given
// profile. Used by loopback transports and tests to emulate the firmware.
func EncodeTelemetry(profile Profile, t TelemetryFrame) []byte {
	if profile == ProfileA {
		return frameA(FuncTelemetry, t.payload()).Bytes()
	}
	return frameB(FuncTelemetry, t.payload()).Bytes()
}

// parseTelemetry decodes a telemetry payload of either generation.
func parseTelemetry(payload []byte) (TelemetryFrame, bool) {
	if len(payload) != telemetryIMUBytes && len(payload) != telemetryBytes {
		return TelemetryFrame{}, false
	}
	t := TelemetryFrame{
		GyroX:  int16(binary.LittleEndian.Uint16(payload[0:])),
		GyroY:  int16(binary.LittleEndian.Uint16(payload[2:])),
		GyroZ:  int16(binary.LittleEndian.Uint16(payload[4:])),
		AccelX: int16(binary.LittleEndian.Uint16(payload[6:])),
		AccelY: int16(binary.LittleEndian.Uint16(payload[8:])),
		AccelZ: int16(binary.LittleEndian.Uint16(payload[10:])),
	}
	if len(payload) == telemetryBytes {
		t.Timestamp = binary.LittleEndian.Uint32(payload[12:])
	}
	return t, true
}

package control

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
	"github.com/akshayakula/myogen/pkg/transport"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	return cfg
}

func newTestSession(t *testing.T, port transport.Port, cfg Config) *Session {
	t.Helper()
	limits := hand.DefaultLimits()
	s, err := NewSession(port, protocol.NewCodec(protocol.ProfileA, limits), limits, cfg)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func stopAndWait(t *testing.T, s *Session) {
	t.Helper()
	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
}

func TestSession_DispatchesSmoothedPose(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())
	go s.Run()
	defer stopAndWait(t, s)

	open, _ := hand.Preset("open")
	s.SetTarget(open)

	select {
	case pose := <-s.Dispatches():
		// First smoothing step from neutral toward the open preset.
		want := hand.Pose{90, 72, 72, 77, 72, 90}
		if pose != want {
			t.Errorf("first dispatch: got %v, want %v", pose, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no dispatch within a second")
	}
}

func TestSession_StartsTelemetryStream(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())
	go s.Run()

	deadline := time.Now().Add(time.Second)
	for port.WriteCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	writes := port.Writes()
	if len(writes) == 0 {
		t.Fatal("no writes after start")
	}
	if !bytes.Equal(writes[0], protocol.EncodeStreamStart()) {
		t.Errorf("first write: got % X, want stream start", writes[0])
	}
	stopAndWait(t, s)
}

func TestSession_IdleTicksWriteNothing(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())
	go s.Run()

	// With the target at neutral, only the stream start should hit the
	// wire no matter how many ticks pass.
	time.Sleep(100 * time.Millisecond)
	if n := port.WriteCount(); n > 1 {
		t.Errorf("idle session wrote %d times", n)
	}
	stopAndWait(t, s)
}

func TestSession_RetryBudgetDisconnect(t *testing.T) {
	port := transport.NewLoopback()
	port.SetWriteError(errors.New("wire fell out"))

	cfg := testConfig()
	cfg.RetryBudget = 3
	s := newTestSession(t, port, cfg)
	go s.Run()
	defer stopAndWait(t, s)

	open, _ := hand.Preset("open")
	s.SetTarget(open)

	select {
	case <-s.Disconnected():
	case <-time.After(2 * time.Second):
		t.Fatal("retry budget never surfaced a disconnect")
	}
	if s.Connected() {
		t.Error("session still reports connected after budget exhausted")
	}
}

func TestSession_WriteFailureRetriesSamePose(t *testing.T) {
	port := transport.NewLoopback()
	port.SetWriteError(errors.New("transient"))

	cfg := testConfig()
	cfg.RetryBudget = 10
	s := newTestSession(t, port, cfg)
	go s.Run()
	defer stopAndWait(t, s)

	open, _ := hand.Preset("open")
	s.SetTarget(open)

	// Let a few failing ticks pass, then heal the link; the pose pending
	// at failure time must be the one that finally goes out.
	time.Sleep(30 * time.Millisecond)
	port.SetWriteError(nil)

	select {
	case pose := <-s.Dispatches():
		want := hand.Pose{90, 72, 72, 77, 72, 90}
		if pose != want {
			t.Errorf("recovered dispatch: got %v, want %v", pose, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no dispatch after link recovered")
	}
}

func TestSession_ReceivesTelemetry(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())

	sample := protocol.TelemetryFrame{GyroX: 123, AccelZ: 456, Timestamp: 789}
	port.Inject(protocol.EncodeTelemetry(protocol.ProfileA, sample))

	select {
	case got := <-s.Telemetry():
		if got != sample {
			t.Errorf("got %+v, want %+v", got, sample)
		}
	default:
		t.Fatal("telemetry not delivered")
	}
}

func TestSession_StampsLegacyTelemetry(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())

	// Give the session clock a moment so the stamp is nonzero.
	time.Sleep(10 * time.Millisecond)

	raw := protocol.EncodeTelemetry(protocol.ProfileA, protocol.TelemetryFrame{GyroX: 5})
	// Rebuild as the legacy 12-byte payload: strip the timestamp field and
	// re-frame.
	legacy := append([]byte{}, raw[4:16]...)
	frame := protocol.Frame{Profile: protocol.ProfileA, Function: protocol.FuncTelemetry, Payload: legacy}
	frame.Checksum = protocol.Checksum(frame.Function, frame.Payload)
	port.Inject(frame.Bytes())

	select {
	case got := <-s.Telemetry():
		if got.Timestamp == 0 {
			t.Error("legacy frame passed through without a host stamp")
		}
		if got.GyroX != 5 {
			t.Errorf("axes corrupted: %+v", got)
		}
	default:
		t.Fatal("telemetry not delivered")
	}
}

func TestSession_GestureFromTelemetryStream(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())

	ts := uint32(0)
	for i := 0; i < 5; i++ {
		calm := protocol.TelemetryFrame{GyroX: 100, AccelZ: 1000, Timestamp: ts}
		port.Inject(protocol.EncodeTelemetry(protocol.ProfileA, calm))
		ts += 50
	}
	spike := protocol.TelemetryFrame{GyroX: 20000, AccelX: 9000, Timestamp: ts}
	port.Inject(protocol.EncodeTelemetry(protocol.ProfileA, spike))

	select {
	case evt := <-s.Gestures():
		if evt.GyroMag != 20000 {
			t.Errorf("gesture gyro magnitude: got %v", evt.GyroMag)
		}
	default:
		t.Fatal("gesture not delivered")
	}
}

func TestSession_DropsCorruptFrames(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())

	raw := protocol.EncodeTelemetry(protocol.ProfileA, protocol.TelemetryFrame{GyroX: 1})
	raw[6] ^= 0x40 // corrupt a payload byte, invalidating the checksum
	port.Inject(raw)

	select {
	case got := <-s.Telemetry():
		t.Errorf("corrupt frame delivered: %+v", got)
	default:
	}
}

func TestSession_ShutdownReturnsToNeutral(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())
	go s.Run()

	open, _ := hand.Preset("open")
	s.SetTarget(open)
	time.Sleep(50 * time.Millisecond)
	stopAndWait(t, s)

	writes := port.Writes()
	if len(writes) < 3 {
		t.Fatalf("only %d writes recorded", len(writes))
	}
	last := writes[len(writes)-1]
	neutral := protocol.NewCodec(protocol.ProfileA, hand.DefaultLimits()).EncodePose(hand.Neutral(), 500*time.Millisecond)
	if !bytes.Equal(last, neutral) {
		t.Errorf("final write: got % X, want neutral pose", last)
	}
	if !bytes.Equal(writes[len(writes)-2], protocol.EncodeStreamStop()) {
		t.Errorf("penultimate write: got % X, want stream stop", writes[len(writes)-2])
	}
	if port.Connected() {
		t.Error("port left open after shutdown")
	}
}

func TestSession_AngleReadback(t *testing.T) {
	port := transport.NewLoopback()
	s := newTestSession(t, port, testConfig())

	if _, ok := s.ReportedAngles(); ok {
		t.Error("readback reported before any response")
	}
	if err := s.RequestAngles(); err != nil {
		t.Fatalf("request angles: %v", err)
	}
	writes := port.Writes()
	if len(writes) != 1 || writes[0][2] != protocol.FuncReadAngles {
		t.Fatalf("readback request not written: %v", writes)
	}

	// Device answers with wire values; inverted joints map back.
	resp := protocol.Frame{
		Profile:  protocol.ProfileA,
		Function: protocol.FuncReadAngles,
		Payload:  []byte{90, 0, 0, 25, 0, 90},
	}
	port.Inject(resp.Bytes())

	pose, ok := s.ReportedAngles()
	if !ok {
		t.Fatal("readback response not captured")
	}
	if want := (hand.Pose{90, 0, 0, 25, 0, 90}); pose != want {
		t.Errorf("reported angles: got %v, want %v", pose, want)
	}
}

func TestSession_ProfileBRejectsAuxCommands(t *testing.T) {
	port := transport.NewLoopback()
	limits := hand.DefaultLimits()
	s, err := NewSession(port, protocol.NewCodec(protocol.ProfileB, limits), limits, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RequestAngles(); err == nil {
		t.Error("angle readback accepted under profile B")
	}
	if err := s.Buzz(1000, 200); err == nil {
		t.Error("buzzer accepted under profile B")
	}
	if err := s.SetRGB(1, 2, 3); err == nil {
		t.Error("RGB accepted under profile B")
	}
	if n := port.WriteCount(); n != 0 {
		t.Errorf("rejected commands still wrote %d frames", n)
	}
}

func TestNewSession_Validation(t *testing.T) {
	port := transport.NewLoopback()
	limits := hand.DefaultLimits()
	codec := protocol.NewCodec(protocol.ProfileA, limits)

	cfg := DefaultConfig()
	cfg.TickInterval = 0
	if _, err := NewSession(port, codec, limits, cfg); !errors.Is(err, ErrConfig) {
		t.Errorf("zero tick: got %v, want ErrConfig", err)
	}

	cfg = DefaultConfig()
	cfg.RetryBudget = 0
	if _, err := NewSession(port, codec, limits, cfg); !errors.Is(err, ErrConfig) {
		t.Errorf("zero retry budget: got %v, want ErrConfig", err)
	}

	cfg = DefaultConfig()
	cfg.Smoother.Factor = 2
	if _, err := NewSession(port, codec, limits, cfg); !errors.Is(err, ErrConfig) {
		t.Errorf("bad smoother: got %v, want ErrConfig", err)
	}
}

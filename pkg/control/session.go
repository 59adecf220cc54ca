package control

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/gesture"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
	"github.com/akshayakula/myogen/pkg/transport"
)

// ErrConfig marks configuration rejected at construction time. A session
// that constructs successfully never fails on configuration mid-run.
var ErrConfig = errors.New("control: invalid configuration")

// Config tunes one session.
type Config struct {
	// TickInterval is the send-loop period. Default 20ms.
	TickInterval time.Duration

	// MoveTime is the servo travel time carried by Profile B frames.
	// Defaults to the tick interval.
	MoveTime time.Duration

	// Smoother tunes the pose smoother.
	Smoother SmootherConfig

	// Gesture tunes the spike detector.
	Gesture gesture.Config

	// RetryBudget is how many consecutive write failures are tolerated
	// before the session surfaces a disconnect. Default 3.
	RetryBudget int

	// EventBuffer sizes the outbound event channels. Default 64.
	EventBuffer int
}

// DefaultConfig returns the stock session tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval: 20 * time.Millisecond,
		MoveTime:     20 * time.Millisecond,
		Smoother:     DefaultSmootherConfig(),
		Gesture:      gesture.DefaultConfig(),
		RetryBudget:  3,
		EventBuffer:  64,
	}
}

// Session drives one hand over one transport: the send side runs on a
// fixed tick (smoother → codec → port), the receive side reacts to byte
// chunks (port → framer → codec → detector). There are no process-wide
// singletons; everything a session needs it owns, and the owner holds the
// only handle.
type Session struct {
	id     string
	port   transport.Port
	codec  *protocol.Codec
	cfg    Config
	framer *protocol.Framer

	mu       sync.Mutex
	smoother *Smoother
	pending  *hand.Pose
	failures int
	lost     bool
	reported *hand.Pose

	detector *gesture.Detector
	started  time.Time

	telemetry  chan protocol.TelemetryFrame
	gestures   chan gesture.Event
	dispatches chan hand.Pose

	disconnected chan struct{}
	discOnce     sync.Once

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSession validates the configuration and wires the receive path. The
// port must already be open and identified.
func NewSession(port transport.Port, codec *protocol.Codec, limits *hand.Limits, cfg Config) (*Session, error) {
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("%w: tick interval %v", ErrConfig, cfg.TickInterval)
	}
	if cfg.RetryBudget < 1 {
		return nil, fmt.Errorf("%w: retry budget %d", ErrConfig, cfg.RetryBudget)
	}
	if cfg.MoveTime <= 0 {
		cfg.MoveTime = cfg.TickInterval
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	smoother, err := NewSmoother(limits, cfg.Smoother)
	if err != nil {
		return nil, err
	}
	detector, err := gesture.NewDetector(cfg.Gesture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	s := &Session{
		id:           uuid.NewString(),
		port:         port,
		codec:        codec,
		cfg:          cfg,
		framer:       protocol.NewFramer(codec.Profile()),
		smoother:     smoother,
		detector:     detector,
		started:      time.Now(),
		telemetry:    make(chan protocol.TelemetryFrame, cfg.EventBuffer),
		gestures:     make(chan gesture.Event, cfg.EventBuffer),
		dispatches:   make(chan hand.Pose, cfg.EventBuffer),
		disconnected: make(chan struct{}),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	port.OnData(s.receive)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Connected reports whether the link is usable and the retry budget has
// not been exhausted.
func (s *Session) Connected() bool {
	s.mu.Lock()
	lost := s.lost
	s.mu.Unlock()
	return !lost && s.port.Connected()
}

// SetTarget hands the session a new target pose from any pose source.
func (s *Session) SetTarget(p hand.Pose) {
	s.mu.Lock()
	s.smoother.SetTarget(p)
	s.mu.Unlock()
}

// Telemetry streams every decoded IMU frame.
func (s *Session) Telemetry() <-chan protocol.TelemetryFrame {
	return s.telemetry
}

// Gestures streams detected gesture events.
func (s *Session) Gestures() <-chan gesture.Event {
	return s.gestures
}

// Dispatches streams every pose actually written to the wire.
func (s *Session) Dispatches() <-chan hand.Pose {
	return s.dispatches
}

// Disconnected is closed when consecutive write failures exhaust the retry
// budget.
func (s *Session) Disconnected() <-chan struct{} {
	return s.disconnected
}

// RequestAngles asks the device to report its servo angles (Profile A
// only). The response arrives asynchronously through ReportedAngles.
func (s *Session) RequestAngles() error {
	raw, err := s.codec.EncodeReadAngles()
	if err != nil {
		return err
	}
	return s.port.Write(raw)
}

// Buzz sounds the onboard buzzer (Profile A only).
func (s *Session) Buzz(freqHz, durationMs uint16) error {
	raw, err := s.codec.EncodeBuzzer(freqHz, durationMs)
	if err != nil {
		return err
	}
	return s.port.Write(raw)
}

// SetRGB sets the onboard LED color (Profile A only).
func (s *Session) SetRGB(r, g, b byte) error {
	raw, err := s.codec.EncodeRGB(r, g, b)
	if err != nil {
		return err
	}
	return s.port.Write(raw)
}

// ReportedAngles returns the last angle readback from the device, if any.
func (s *Session) ReportedAngles() (hand.Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reported == nil {
		return hand.Pose{}, false
	}
	return *s.reported, true
}

// Run drives the send loop until Stop is called. On the way out it makes
// one best-effort attempt to return the hand to neutral and releases the
// transport.
func (s *Session) Run() {
	defer close(s.done)

	if err := s.port.Write(protocol.EncodeStreamStart()); err != nil {
		log.Warn("telemetry stream start failed", "session", s.id, "err", err)
	}

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	log.Info("session started", "session", s.id, "profile", s.codec.Profile().String(), "tick", s.cfg.TickInterval)
	for {
		select {
		case <-s.stop:
			s.shutdown()
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop halts the session. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once Run has finished its shutdown sequence.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// tick executes one send cycle. A tick that finds no change performs no
// transport I/O; a failed write keeps the pose pending and retries next
// tick.
func (s *Session) tick() {
	s.mu.Lock()
	if s.lost {
		s.mu.Unlock()
		return
	}
	if s.pending == nil {
		if pose, ok := s.smoother.Tick(); ok {
			p := pose
			s.pending = &p
		}
	}
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return
	}

	err := s.port.Write(s.codec.EncodePose(*pending, s.cfg.MoveTime))
	s.mu.Lock()
	if err != nil {
		s.failures++
		failures := s.failures
		budget := s.cfg.RetryBudget
		exhausted := failures >= budget
		if exhausted {
			s.lost = true
		}
		s.mu.Unlock()

		log.Warn("pose write failed, will retry", "session", s.id, "failures", failures, "err", err)
		if exhausted {
			log.Error("retry budget exhausted, surfacing disconnect", "session", s.id, "budget", budget)
			s.discOnce.Do(func() { close(s.disconnected) })
		}
		return
	}
	s.failures = 0
	dispatched := *pending
	s.pending = nil
	s.mu.Unlock()

	select {
	case s.dispatches <- dispatched:
	default:
		// Slow consumer; dispatch notifications are advisory.
	}
}

// receive is the transport's byte-arrival callback: purely synchronous
// parsing, with the framer and detector owned exclusively by this path.
func (s *Session) receive(chunk []byte) {
	for _, frame := range s.framer.Feed(chunk) {
		switch frame.Function {
		case protocol.FuncTelemetry:
			t, err := s.codec.DecodeTelemetry(frame)
			if err != nil {
				log.Debug("dropping bad telemetry frame", "session", s.id, "err", err)
				continue
			}
			if t.Timestamp == 0 {
				// Legacy firmware sends no clock; stamp from session uptime.
				t.Timestamp = uint32(time.Since(s.started).Milliseconds())
			}
			select {
			case s.telemetry <- t:
			default:
			}
			if evt, ok := s.detector.Process(t); ok {
				log.Info("gesture detected", "session", s.id, "gyro", int(evt.GyroMag), "accel", int(evt.AccelMag))
				select {
				case s.gestures <- evt:
				default:
				}
			}
		case protocol.FuncReadAngles:
			pose, err := s.codec.DecodeAngles(frame)
			if err != nil {
				log.Debug("dropping bad angle readback", "session", s.id, "err", err)
				continue
			}
			s.mu.Lock()
			s.reported = &pose
			s.mu.Unlock()
		default:
			if err := s.codec.Verify(frame); err != nil {
				log.Debug("dropping malformed frame", "session", s.id, "err", err)
			}
		}
	}
}

// shutdown returns the hand to neutral and releases the port.
func (s *Session) shutdown() {
	if s.port.Connected() {
		if err := s.port.Write(protocol.EncodeStreamStop()); err != nil {
			log.Debug("telemetry stream stop failed", "session", s.id, "err", err)
		}
		if err := s.port.Write(s.codec.EncodePose(hand.Neutral(), 500*time.Millisecond)); err != nil {
			log.Warn("return-to-neutral failed", "session", s.id, "err", err)
		}
	}
	if err := s.port.Close(); err != nil {
		log.Warn("transport close failed", "session", s.id, "err", err)
	}
	log.Info("session stopped", "session", s.id)
}

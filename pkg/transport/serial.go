package transport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/akshayakula/myogen/internal/log"
)

// SerialOptions configures a direct serial link to the hand.
type SerialOptions struct {
	// Port is the device path, e.g. /dev/ttyUSB0. Empty means auto-detect.
	Port string

	// BaudRate defaults to 9600, the stock firmware rate.
	BaudRate int

	// ReadBufferSize is the per-read chunk size. Defaults to 256.
	ReadBufferSize int
}

// SerialPort is a Port over a local serial device.
type SerialPort struct {
	port serial.Port
	name string

	mu        sync.Mutex
	handler   func([]byte)
	connected bool

	done chan struct{}
}

// usbPatterns match device names that look like a USB serial adapter.
var usbPatterns = []string{"usbserial", "usbmodem", "ttyUSB", "ttyACM"}

// DetectSerialPort returns the first serial port that looks like a USB
// adapter, or an error when none is present.
func DetectSerialPort() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	for _, name := range ports {
		for _, pattern := range usbPatterns {
			if strings.Contains(name, pattern) {
				return name, nil
			}
		}
	}
	return "", fmt.Errorf("no USB serial port detected among %v", ports)
}

// OpenSerial opens the serial device and starts its reader.
func OpenSerial(opts SerialOptions) (*SerialPort, error) {
	name := opts.Port
	if name == "" {
		detected, err := DetectSerialPort()
		if err != nil {
			return nil, err
		}
		log.Info("auto-detected serial port", "port", detected)
		name = detected
	}
	baud := opts.BaudRate
	if baud == 0 {
		baud = 9600
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	s := &SerialPort{
		port:      port,
		name:      name,
		connected: true,
		done:      make(chan struct{}),
	}
	bufSize := opts.ReadBufferSize
	if bufSize == 0 {
		bufSize = 256
	}
	go s.readLoop(bufSize)
	return s, nil
}

func (s *SerialPort) readLoop(bufSize int) {
	defer close(s.done)
	buf := make([]byte, bufSize)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			s.mu.Lock()
			closed := !s.connected
			s.connected = false
			s.mu.Unlock()
			if !closed {
				log.Warn("serial read failed, link lost", "port", s.name, "err", err)
			}
			return
		}
		if n == 0 {
			continue // read timeout, poll again
		}
		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()
		if handler != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			handler(chunk)
		}
	}
}

// Write sends one frame's bytes down the wire.
func (s *SerialPort) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	if _, err := s.port.Write(p); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// OnData registers the receive callback.
func (s *SerialPort) OnData(fn func([]byte)) {
	s.mu.Lock()
	s.handler = fn
	s.mu.Unlock()
}

// Connected reports link health.
func (s *SerialPort) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close stops the reader and releases the device.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.connected = false
	s.mu.Unlock()

	err := s.port.Close()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		log.Warn("serial reader did not stop in time", "port", s.name)
	}
	return err
}

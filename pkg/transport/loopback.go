package transport

import "sync"

// Loopback is an in-memory Port for tests and dry runs. Writes are
// recorded, and Inject delivers bytes to the receive callback as if they
// arrived from the device.
type Loopback struct {
	mu        sync.Mutex
	writes    [][]byte
	handler   func([]byte)
	connected bool
	writeErr  error
}

// NewLoopback returns a connected loopback port.
func NewLoopback() *Loopback {
	return &Loopback{connected: true}
}

// Write records the bytes, or fails with the configured error.
func (l *Loopback) Write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return ErrNotConnected
	}
	if l.writeErr != nil {
		return l.writeErr
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	l.writes = append(l.writes, frame)
	return nil
}

// OnData registers the receive callback.
func (l *Loopback) OnData(fn func([]byte)) {
	l.mu.Lock()
	l.handler = fn
	l.mu.Unlock()
}

// Connected reports the simulated link state.
func (l *Loopback) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Close marks the port disconnected.
func (l *Loopback) Close() error {
	l.mu.Lock()
	l.connected = false
	l.mu.Unlock()
	return nil
}

// Inject delivers a chunk to the receive callback, synchronously.
func (l *Loopback) Inject(data []byte) {
	l.mu.Lock()
	handler := l.handler
	l.mu.Unlock()
	if handler != nil {
		handler(data)
	}
}

// Writes returns a copy of everything written so far.
func (l *Loopback) Writes() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.writes))
	copy(out, l.writes)
	return out
}

// WriteCount returns how many writes have been recorded.
func (l *Loopback) WriteCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.writes)
}

// SetWriteError makes subsequent writes fail with err; nil restores
// success.
func (l *Loopback) SetWriteError(err error) {
	l.mu.Lock()
	l.writeErr = err
	l.mu.Unlock()
}

// SetConnected overrides the simulated link state.
func (l *Loopback) SetConnected(connected bool) {
	l.mu.Lock()
	l.connected = connected
	l.mu.Unlock()
}

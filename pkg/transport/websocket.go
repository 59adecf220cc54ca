package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akshayakula/myogen/internal/log"
)

// WebsocketOptions configures a link through a serial-over-websocket
// bridge, for rigs where the hand's adapter hangs off another machine.
type WebsocketOptions struct {
	// URL of the bridge, e.g. ws://bridge.local:8765/serial.
	URL string

	// HandshakeTimeout bounds the dial. Defaults to 5 seconds.
	HandshakeTimeout time.Duration
}

// WebsocketPort is a Port tunneled over a websocket carrying binary
// messages of raw wire bytes.
type WebsocketPort struct {
	conn *websocket.Conn
	url  string

	mu        sync.Mutex
	handler   func([]byte)
	connected bool

	done chan struct{}
}

// DialWebsocket connects to the bridge and starts the read pump.
func DialWebsocket(opts WebsocketOptions) (*WebsocketPort, error) {
	timeout := opts.HandshakeTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}

	w := &WebsocketPort{
		conn:      conn,
		url:       opts.URL,
		connected: true,
		done:      make(chan struct{}),
	}
	go w.readLoop()
	return w, nil
}

func (w *WebsocketPort) readLoop() {
	defer close(w.done)
	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			closed := !w.connected
			w.connected = false
			w.mu.Unlock()
			if !closed {
				log.Warn("websocket bridge read failed, link lost", "url", w.url, "err", err)
			}
			return
		}
		w.mu.Lock()
		handler := w.handler
		w.mu.Unlock()
		if handler != nil {
			handler(data)
		}
	}
}

// Write sends one frame as a binary message. Gorilla connections allow a
// single concurrent writer, which the mutex enforces.
func (w *WebsocketPort) Write(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ErrNotConnected
	}
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// OnData registers the receive callback.
func (w *WebsocketPort) OnData(fn func([]byte)) {
	w.mu.Lock()
	w.handler = fn
	w.mu.Unlock()
}

// Connected reports link health.
func (w *WebsocketPort) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Close tears down the websocket.
func (w *WebsocketPort) Close() error {
	w.mu.Lock()
	if !w.connected {
		w.mu.Unlock()
		return nil
	}
	w.connected = false
	w.mu.Unlock()

	err := w.conn.Close()
	select {
	case <-w.done:
	case <-time.After(time.Second):
	}
	return err
}

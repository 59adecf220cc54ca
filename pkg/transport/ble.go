package transport

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/akshayakula/myogen/internal/log"
)

// The hand's BLE module exposes a single characteristic used for both
// writes and notifications.
var (
	bleServiceUUID = bluetooth.New16BitUUID(0xFFF0)
	bleCharUUID    = bluetooth.New16BitUUID(0xFFE1)
)

// BLEOptions configures discovery of the hand's BLE peripheral.
type BLEOptions struct {
	// Name is the advertised local name, e.g. "Hiwonder".
	Name string

	// ScanTimeout bounds discovery; connect attempts must fail rather
	// than hang. Defaults to 10 seconds.
	ScanTimeout time.Duration
}

// BLEPort is a Port over a GATT characteristic.
type BLEPort struct {
	device bluetooth.Device
	char   bluetooth.DeviceCharacteristic

	mu        sync.Mutex
	handler   func([]byte)
	connected bool
}

// OpenBLE scans for the named peripheral, connects, resolves the serial
// characteristic, and subscribes to notifications.
func OpenBLE(opts BLEOptions) (*BLEPort, error) {
	timeout := opts.ScanTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable BLE adapter: %w", err)
	}

	found := make(chan bluetooth.ScanResult, 1)
	go func() {
		err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() != opts.Name {
				return
			}
			select {
			case found <- result:
			default:
			}
			a.StopScan()
		})
		if err != nil {
			log.Warn("BLE scan ended", "err", err)
		}
	}()

	var result bluetooth.ScanResult
	select {
	case result = <-found:
	case <-time.After(timeout):
		adapter.StopScan()
		return nil, fmt.Errorf("BLE device %q not found within %s", opts.Name, timeout)
	}
	log.Info("found BLE device", "name", opts.Name, "address", result.Address.String(), "rssi", result.RSSI)

	device, err := adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("BLE connect: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{bleServiceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("discover service %s: %w", bleServiceUUID.String(), err)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{bleCharUUID})
	if err != nil || len(chars) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("discover characteristic %s: %w", bleCharUUID.String(), err)
	}

	b := &BLEPort{device: device, char: chars[0], connected: true}
	if err := b.char.EnableNotifications(func(buf []byte) {
		b.mu.Lock()
		handler := b.handler
		b.mu.Unlock()
		if handler != nil {
			chunk := make([]byte, len(buf))
			copy(chunk, buf)
			handler(chunk)
		}
	}); err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("enable notifications: %w", err)
	}
	return b, nil
}

// Write sends one frame without response, the only write mode the module
// supports.
func (b *BLEPort) Write(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return ErrNotConnected
	}
	if _, err := b.char.WriteWithoutResponse(p); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// OnData registers the notification callback.
func (b *BLEPort) OnData(fn func([]byte)) {
	b.mu.Lock()
	b.handler = fn
	b.mu.Unlock()
}

// Connected reports link health.
func (b *BLEPort) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Close disconnects from the peripheral.
func (b *BLEPort) Close() error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return nil
	}
	b.connected = false
	b.mu.Unlock()
	return b.device.Disconnect()
}

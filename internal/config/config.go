// Package config provides configuration helpers for myogen commands.
package config

import (
	"os"
	"strconv"
)

// Default device configuration.
const (
	DefaultBaudRate = 9600
	DefaultWebAddr  = ":8090"
	DefaultBLEName  = "Hiwonder"
)

// SerialPort returns the serial device path from MYOGEN_PORT.
// Falls back to the provided default if not set. An empty result means
// the serial adapter should auto-detect the port.
func SerialPort(defaultPort string) string {
	if port := os.Getenv("MYOGEN_PORT"); port != "" {
		return port
	}
	return defaultPort
}

// BaudRate returns the serial baud rate from MYOGEN_BAUD or the default.
func BaudRate() int {
	if raw := os.Getenv("MYOGEN_BAUD"); raw != "" {
		if baud, err := strconv.Atoi(raw); err == nil && baud > 0 {
			return baud
		}
	}
	return DefaultBaudRate
}

// LogLevel returns the log level from MYOGEN_LOG_LEVEL or "info".
func LogLevel() string {
	if level := os.Getenv("MYOGEN_LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// WebAddr returns the dashboard listen address from MYOGEN_WEB_ADDR.
func WebAddr() string {
	if addr := os.Getenv("MYOGEN_WEB_ADDR"); addr != "" {
		return addr
	}
	return DefaultWebAddr
}

// BLEName returns the BLE peripheral name from MYOGEN_BLE_NAME.
func BLEName() string {
	if name := os.Getenv("MYOGEN_BLE_NAME"); name != "" {
		return name
	}
	return DefaultBLEName
}

// CalibrationPath returns the calibration file path from MYOGEN_CALIBRATION.
// Empty means compiled-in defaults are used.
func CalibrationPath() string {
	return os.Getenv("MYOGEN_CALIBRATION")
}

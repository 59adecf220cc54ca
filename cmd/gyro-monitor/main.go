// Command gyro-monitor streams decoded IMU telemetry and gesture events
// from the hand to stdout, one line per frame. Useful for tuning gesture
// thresholds on a new rig.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akshayakula/myogen/internal/config"
	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/control"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
	"github.com/akshayakula/myogen/pkg/transport"
)

func main() {
	transportKind := flag.String("transport", "serial", "Link to the hand: serial or ble")
	serialPort := flag.String("port", config.SerialPort(""), "Serial device path (empty = auto-detect)")
	baud := flag.Int("baud", config.BaudRate(), "Serial baud rate")
	bleName := flag.String("ble-name", config.BLEName(), "BLE peripheral name")
	profileName := flag.String("profile", "a", "Wire profile: a or b")
	raw := flag.Bool("raw", false, "Print raw axis values instead of magnitudes")
	flag.Parse()

	log.Init(config.LogLevel())

	profile, err := protocol.ParseProfile(*profileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var port transport.Port
	switch *transportKind {
	case "serial":
		port, err = transport.OpenSerial(transport.SerialOptions{Port: *serialPort, BaudRate: *baud})
	case "ble":
		port, err = transport.OpenBLE(transport.BLEOptions{Name: *bleName})
	default:
		err = fmt.Errorf("unknown transport %q (want serial or ble)", *transportKind)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "transport open failed: %v\n", err)
		os.Exit(1)
	}

	limits := hand.DefaultLimits()
	session, err := control.NewSession(port, protocol.NewCodec(profile, limits), limits, control.DefaultConfig())
	if err != nil {
		port.Close()
		fmt.Fprintf(os.Stderr, "session setup failed: %v\n", err)
		os.Exit(1)
	}
	go session.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("monitoring telemetry, ctrl-c to stop")
	for {
		select {
		case t := <-session.Telemetry():
			if *raw {
				fmt.Printf("[%8d] gyro %6d %6d %6d  accel %6d %6d %6d\n",
					t.Timestamp, t.GyroX, t.GyroY, t.GyroZ, t.AccelX, t.AccelY, t.AccelZ)
			} else {
				fmt.Printf("[%8d] gyro %8.0f  accel %8.0f\n",
					t.Timestamp, t.GyroMagnitude(), t.AccelMagnitude())
			}
		case e := <-session.Gestures():
			fmt.Printf("[%8d] GESTURE gyro %.0f accel %.0f baseline %.0f\n",
				e.Frame.Timestamp, e.GyroMag, e.AccelMag, e.Baseline)
		case <-session.Disconnected():
			fmt.Fprintln(os.Stderr, "hand link lost")
			session.Stop()
			<-session.Done()
			os.Exit(1)
		case <-sigChan:
			session.Stop()
			<-session.Done()
			return
		}
	}
}

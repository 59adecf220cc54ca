package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akshayakula/myogen/internal/config"
	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/anim"
	"github.com/akshayakula/myogen/pkg/control"
	"github.com/akshayakula/myogen/pkg/gesture"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/protocol"
	"github.com/akshayakula/myogen/pkg/transport"
	"github.com/akshayakula/myogen/pkg/web"
)

func main() {
	transportKind := flag.String("transport", "serial", "Link to the hand: serial, ble, ws, or loopback")
	serialPort := flag.String("port", config.SerialPort(""), "Serial device path (empty = auto-detect)")
	baud := flag.Int("baud", config.BaudRate(), "Serial baud rate")
	bleName := flag.String("ble-name", config.BLEName(), "BLE peripheral name")
	wsURL := flag.String("ws-url", "", "Serial-over-websocket bridge URL")
	profileName := flag.String("profile", "a", "Wire profile: a (checksum) or b (time-coded)")
	webAddr := flag.String("web", config.WebAddr(), "Dashboard listen address")
	calPath := flag.String("calibration", config.CalibrationPath(), "Calibration TOML (empty = defaults)")
	preset := flag.String("preset", "neutral", "Initial pose preset")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	profile, err := protocol.ParseProfile(*profileName)
	if err != nil {
		log.Error("bad profile flag", "err", err)
		os.Exit(1)
	}

	cal := hand.DefaultCalibration()
	if *calPath != "" {
		cal, err = hand.LoadCalibration(*calPath)
		if err != nil {
			log.Error("calibration load failed", "path", *calPath, "err", err)
			os.Exit(1)
		}
		log.Info("loaded calibration", "path", *calPath)
	}
	limits, err := cal.Limits()
	if err != nil {
		log.Error("calibration rejected", "err", err)
		os.Exit(1)
	}

	port, err := openTransport(*transportKind, *serialPort, *baud, *bleName, *wsURL)
	if err != nil {
		log.Error("transport open failed", "transport", *transportKind, "err", err)
		os.Exit(1)
	}

	cfg := control.DefaultConfig()
	cfg.TickInterval = time.Duration(cal.Smoothing.TickMs) * time.Millisecond
	cfg.Smoother = control.SmootherConfig{
		Factor:          cal.Smoothing.Factor,
		ChangeThreshold: cal.Smoothing.ChangeThreshold,
	}
	cfg.Gesture = gesture.Config{
		GyroThreshold:  cal.Gesture.GyroThreshold,
		AccelThreshold: cal.Gesture.AccelThreshold,
		Cooldown:       time.Duration(cal.Gesture.CooldownMs) * time.Millisecond,
		WindowSize:     cal.Gesture.WindowSize,
	}

	session, err := control.NewSession(port, protocol.NewCodec(profile, limits), limits, cfg)
	if err != nil {
		port.Close()
		log.Error("session setup failed", "err", err)
		os.Exit(1)
	}

	if pose, ok := hand.Preset(*preset); ok {
		session.SetTarget(pose)
	} else {
		log.Warn("unknown preset, starting at neutral", "preset", *preset)
	}

	player := anim.NewPlayer(session)
	server := web.NewServer(*webAddr, session, player)
	server.Attach(session)

	go session.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info("shutting down", "signal", sig.String())
		case <-session.Disconnected():
			log.Error("hand link lost, shutting down")
		}
		player.Stop()
		session.Stop()
		<-session.Done()
		if err := server.Shutdown(); err != nil {
			log.Warn("dashboard shutdown failed", "err", err)
		}
	}()

	if err := server.Start(); err != nil {
		log.Error("dashboard exited", "err", err)
		session.Stop()
		<-session.Done()
		os.Exit(1)
	}
}

func openTransport(kind, serialPort string, baud int, bleName, wsURL string) (transport.Port, error) {
	switch kind {
	case "serial":
		return transport.OpenSerial(transport.SerialOptions{Port: serialPort, BaudRate: baud})
	case "ble":
		return transport.OpenBLE(transport.BLEOptions{Name: bleName})
	case "ws":
		return transport.DialWebsocket(transport.WebsocketOptions{URL: wsURL})
	case "loopback":
		// Hardware-free mode for exercising the dashboard.
		return transport.NewLoopback(), nil
	}
	return nil, fmt.Errorf("unknown transport %q (want serial, ble, ws, or loopback)", kind)
}

// Package web provides a real-time dashboard and control API for the hand.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/anim"
	"github.com/akshayakula/myogen/pkg/control"
	"github.com/akshayakula/myogen/pkg/hand"
	"github.com/akshayakula/myogen/pkg/hub"
)

// Controller is the slice of a session the dashboard needs.
type Controller interface {
	ID() string
	Connected() bool
	SetTarget(hand.Pose)
	RequestAngles() error
	ReportedAngles() (hand.Pose, bool)
	Buzz(freqHz, durationMs uint16) error
	SetRGB(r, g, b byte) error
}

// Server exposes the REST control surface and websocket event streams.
type Server struct {
	app  *fiber.App
	addr string

	ctrl   Controller
	player *anim.Player

	telemetryHub *hub.Hub
	gestureHub   *hub.Hub
	statusHub    *hub.Hub
}

// NewServer builds the dashboard around one session controller.
func NewServer(addr string, ctrl Controller, player *anim.Player) *Server {
	s := &Server{
		addr:         addr,
		ctrl:         ctrl,
		player:       player,
		telemetryHub: hub.New("telemetry"),
		gestureHub:   hub.New("gestures"),
		statusHub:    hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "myogen dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/presets", s.handlePresets)
	api.Post("/pose", s.handlePose)
	api.Post("/preset/:name", s.handlePreset)
	api.Post("/curl", s.handleCurl)
	api.Get("/angles", s.handleAngles)
	api.Post("/buzzer", s.handleBuzzer)
	api.Post("/rgb", s.handleRGB)
	api.Get("/animations", s.handleAnimations)
	api.Post("/animation/:name", s.handlePlayAnimation)
	api.Delete("/animation", s.handleStopAnimation)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.subscribe(s.telemetryHub)))
	app.Get("/ws/gestures", websocket.New(s.subscribe(s.gestureHub)))
	app.Get("/ws/status", websocket.New(s.subscribe(s.statusHub)))

	s.app = app
	return s
}

// subscribe attaches a websocket connection to a hub until it closes.
func (s *Server) subscribe(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		hub.NewClient(h, conn).Run()
	}
}

// Attach pumps a session's event channels into the websocket hubs. Call
// before Start; the pumps exit when the session's channels drain after
// Stop.
func (s *Server) Attach(session *control.Session) {
	go func() {
		for t := range session.Telemetry() {
			s.telemetryHub.Publish(hub.TelemetryEvent(t))
		}
	}()
	go func() {
		for e := range session.Gestures() {
			s.gestureHub.Publish(hub.GestureEvent(e))
		}
	}()
	go func() {
		for p := range session.Dispatches() {
			s.statusHub.Publish(hub.PoseEvent(p))
		}
	}()
	go func() {
		<-session.Disconnected()
		s.statusHub.Publish(hub.NewEvent(hub.EventStatus, hub.StatusData{
			SessionID: session.ID(),
			Connected: false,
		}))
	}()
}

// Start runs the hubs and listens. Blocks until Shutdown.
func (s *Server) Start() error {
	go s.telemetryHub.Run()
	go s.gestureHub.Run()
	go s.statusHub.Run()
	log.Info("dashboard listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akshayakula/myogen/pkg/anim"
	"github.com/akshayakula/myogen/pkg/hand"
)

type poseRequest struct {
	Angles []int `json:"angles"`
}

type curlRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"session_id": s.ctrl.ID(),
		"connected":  s.ctrl.Connected(),
		"animation":  s.player.Playing(),
	})
}

func (s *Server) handlePresets(c *fiber.Ctx) error {
	out := make(map[string][]int, len(hand.PresetNames()))
	for _, name := range hand.PresetNames() {
		p, _ := hand.Preset(name)
		out[name] = p[:]
	}
	return c.JSON(out)
}

func (s *Server) handlePose(c *fiber.Ctx) error {
	var req poseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	pose, err := hand.NewPose(req.Angles)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.player.Stop()
	s.ctrl.SetTarget(pose)
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handlePreset(c *fiber.Ctx) error {
	name := c.Params("name")
	pose, ok := hand.Preset(name)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown preset: "+name)
	}
	s.player.Stop()
	s.ctrl.SetTarget(pose)
	return c.JSON(fiber.Map{"ok": true, "preset": name, "angles": pose[:]})
}

func (s *Server) handleCurl(c *fiber.Ctx) error {
	var req curlRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	pose, err := hand.ParseCurlPose(req.Text)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.player.Stop()
	s.ctrl.SetTarget(pose)
	return c.JSON(fiber.Map{"ok": true, "angles": pose[:]})
}

type buzzerRequest struct {
	FreqHz     uint16 `json:"freq_hz"`
	DurationMs uint16 `json:"duration_ms"`
}

type rgbRequest struct {
	R byte `json:"r"`
	G byte `json:"g"`
	B byte `json:"b"`
}

// handleAngles kicks off a readback and returns the most recent report.
// The device answers asynchronously, so the first call after startup may
// come back empty.
func (s *Server) handleAngles(c *fiber.Ctx) error {
	if err := s.ctrl.RequestAngles(); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	pose, ok := s.ctrl.ReportedAngles()
	if !ok {
		return c.JSON(fiber.Map{"reported": false})
	}
	return c.JSON(fiber.Map{"reported": true, "angles": pose[:]})
}

func (s *Server) handleBuzzer(c *fiber.Ctx) error {
	var req buzzerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.ctrl.Buzz(req.FreqHz, req.DurationMs); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleRGB(c *fiber.Ctx) error {
	var req rgbRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.ctrl.SetRGB(req.R, req.G, req.B); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleAnimations(c *fiber.Ctx) error {
	names := make([]string, 0, len(anim.Animations()))
	for name := range anim.Animations() {
		names = append(names, name)
	}
	return c.JSON(fiber.Map{"animations": names, "playing": s.player.Playing()})
}

func (s *Server) handlePlayAnimation(c *fiber.Ctx) error {
	name := c.Params("name")
	a, ok := anim.Animations()[name]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown animation: "+name)
	}
	if err := s.player.Play(a); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"ok": true, "playing": name})
}

func (s *Server) handleStopAnimation(c *fiber.Ctx) error {
	s.player.Stop()
	return c.JSON(fiber.Map{"ok": true})
}

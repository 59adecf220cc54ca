// Package anim plays keyframe animations through a session as just another
// pose source: it only ever sets targets, so the smoother and bandwidth
// gates still apply.
package anim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/akshayakula/myogen/internal/log"
	"github.com/akshayakula/myogen/pkg/hand"
)

// Keyframe is one step of an animation: a pose and how long to dwell on it
// after the transition.
type Keyframe struct {
	Pose hand.Pose
	Hold time.Duration
}

// Animation is a named keyframe sequence.
type Animation struct {
	Name   string
	Frames []Keyframe
	Loop   bool
}

// stepInterval is how often the player advances targets between keyframes.
const stepInterval = 50 * time.Millisecond

// transition is how long the player spends interpolating into each frame.
const transition = 300 * time.Millisecond

// Wave rolls the fingers open and closed one after another.
func Wave() Animation {
	open, _ := hand.Preset("open")
	closed, _ := hand.Preset("closed")
	frames := make([]Keyframe, 0, 2*(hand.Pinky+1))
	// One finger curled against an open hand, then one extended against a
	// fist, rippling thumb to pinky.
	for finger := hand.Thumb; finger <= hand.Pinky; finger++ {
		pose := open
		pose[finger] = closed[finger]
		frames = append(frames, Keyframe{Pose: pose, Hold: 150 * time.Millisecond})
	}
	for finger := hand.Thumb; finger <= hand.Pinky; finger++ {
		pose := closed
		pose[finger] = open[finger]
		frames = append(frames, Keyframe{Pose: pose, Hold: 150 * time.Millisecond})
	}
	return Animation{Name: "wave", Frames: frames, Loop: true}
}

// OpenClose alternates between the open and closed presets.
func OpenClose() Animation {
	open, _ := hand.Preset("open")
	closed, _ := hand.Preset("closed")
	return Animation{
		Name: "openClose",
		Frames: []Keyframe{
			{Pose: open, Hold: 400 * time.Millisecond},
			{Pose: closed, Hold: 400 * time.Millisecond},
		},
		Loop: true,
	}
}

// Animations returns the built-in animation table.
func Animations() map[string]Animation {
	return map[string]Animation{
		"wave":      Wave(),
		"openClose": OpenClose(),
	}
}

// PoseTarget is where the player sends poses, normally a control session.
type PoseTarget interface {
	SetTarget(hand.Pose)
}

// Player runs at most one animation at a time against one target. Starting
// a new animation stops the previous one.
type Player struct {
	target PoseTarget

	mu      sync.Mutex
	stop    chan struct{}
	playing string
}

// NewPlayer creates an idle player.
func NewPlayer(target PoseTarget) *Player {
	return &Player{target: target}
}

// Playing returns the name of the running animation, or "".
func (p *Player) Playing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Play starts an animation, replacing any running one.
func (p *Player) Play(a Animation) error {
	if len(a.Frames) == 0 {
		return fmt.Errorf("anim: %q has no keyframes", a.Name)
	}
	p.Stop()

	p.mu.Lock()
	stop := make(chan struct{})
	p.stop = stop
	p.playing = a.Name
	p.mu.Unlock()

	go p.run(a, stop)
	return nil
}

// Stop halts the running animation, if any, and retargets neutral.
func (p *Player) Stop() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.playing = ""
	p.mu.Unlock()
	if stop != nil {
		close(stop)
		p.target.SetTarget(hand.Neutral())
	}
}

func (p *Player) run(a Animation, stop chan struct{}) {
	defer func() {
		p.mu.Lock()
		finished := p.stop == stop
		if finished {
			p.stop = nil
			p.playing = ""
		}
		p.mu.Unlock()
		if finished {
			p.target.SetTarget(hand.Neutral())
		}
	}()

	log.Info("animation started", "name", a.Name, "frames", len(a.Frames), "loop", a.Loop)
	current := hand.Neutral()
	for {
		for _, frame := range a.Frames {
			if !p.ease(current, frame.Pose, stop) {
				return
			}
			current = frame.Pose
			select {
			case <-stop:
				return
			case <-time.After(frame.Hold):
			}
		}
		if !a.Loop {
			log.Info("animation finished", "name", a.Name)
			return
		}
	}
}

// ease interpolates targets from one pose to the next with a smoothstep
// curve, returning false if stopped mid-transition.
func (p *Player) ease(from, to hand.Pose, stop chan struct{}) bool {
	steps := int(transition / stepInterval)
	for step := 1; step <= steps; step++ {
		t := smoothstep(float64(step) / float64(steps))
		var pose hand.Pose
		for i := range pose {
			pose[i] = int(math.Round(lerp(float64(from[i]), float64(to[i]), t)))
		}
		p.target.SetTarget(pose)
		select {
		case <-stop:
			return false
		case <-time.After(stepInterval):
		}
	}
	return true
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothstep eases in and out: 3t² - 2t³.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

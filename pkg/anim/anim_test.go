package anim

import (
	"sync"
	"testing"
	"time"

	"github.com/akshayakula/myogen/pkg/hand"
)

// mockTarget records every pose set on it.
type mockTarget struct {
	mu    sync.Mutex
	poses []hand.Pose
}

func (m *mockTarget) SetTarget(p hand.Pose) {
	m.mu.Lock()
	m.poses = append(m.poses, p)
	m.mu.Unlock()
}

func (m *mockTarget) last() (hand.Pose, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.poses) == 0 {
		return hand.Pose{}, false
	}
	return m.poses[len(m.poses)-1], true
}

func (m *mockTarget) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.poses)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPlayer_FinishesAndReturnsNeutral(t *testing.T) {
	target := &mockTarget{}
	player := NewPlayer(target)

	closed, _ := hand.Preset("closed")
	a := Animation{Name: "once", Frames: []Keyframe{{Pose: closed}}}
	if err := player.Play(a); err != nil {
		t.Fatalf("play: %v", err)
	}
	if player.Playing() != "once" {
		t.Errorf("playing: got %q, want once", player.Playing())
	}

	waitFor(t, 2*time.Second, func() bool { return player.Playing() == "" })

	last, ok := target.last()
	if !ok {
		t.Fatal("no poses set")
	}
	if last != hand.Neutral() {
		t.Errorf("final target: got %v, want neutral", last)
	}
}

func TestPlayer_EasesThroughIntermediatePoses(t *testing.T) {
	target := &mockTarget{}
	player := NewPlayer(target)

	closed, _ := hand.Preset("closed")
	a := Animation{Name: "once", Frames: []Keyframe{{Pose: closed}}}
	if err := player.Play(a); err != nil {
		t.Fatalf("play: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return player.Playing() == "" })

	// The transition must pass through poses strictly between neutral and
	// closed, not jump straight to the keyframe.
	target.mu.Lock()
	defer target.mu.Unlock()
	sawIntermediate := false
	for _, p := range target.poses {
		if p[hand.Index] > 90 && p[hand.Index] < 160 {
			sawIntermediate = true
			break
		}
	}
	if !sawIntermediate {
		t.Error("no intermediate pose between neutral and closed")
	}
}

func TestPlayer_StopHaltsLoop(t *testing.T) {
	target := &mockTarget{}
	player := NewPlayer(target)

	if err := player.Play(OpenClose()); err != nil {
		t.Fatalf("play: %v", err)
	}
	waitFor(t, time.Second, func() bool { return target.count() > 0 })

	player.Stop()
	if player.Playing() != "" {
		t.Errorf("playing after stop: %q", player.Playing())
	}

	// The goroutine winds down; no new targets after a settling pause.
	time.Sleep(100 * time.Millisecond)
	n := target.count()
	time.Sleep(150 * time.Millisecond)
	if target.count() != n {
		t.Error("poses still arriving after stop")
	}

	// Stop retargets neutral, though one in-flight ease step may land
	// after it.
	target.mu.Lock()
	defer target.mu.Unlock()
	tail := target.poses
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	sawNeutral := false
	for _, p := range tail {
		if p == hand.Neutral() {
			sawNeutral = true
		}
	}
	if !sawNeutral {
		t.Errorf("stop did not retarget neutral: tail %v", tail)
	}
}

func TestPlayer_PlayReplacesRunningAnimation(t *testing.T) {
	target := &mockTarget{}
	player := NewPlayer(target)

	if err := player.Play(OpenClose()); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := player.Play(Wave()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if player.Playing() != "wave" {
		t.Errorf("playing: got %q, want wave", player.Playing())
	}
	player.Stop()
}

func TestPlayer_RejectsEmptyAnimation(t *testing.T) {
	player := NewPlayer(&mockTarget{})
	if err := player.Play(Animation{Name: "empty"}); err == nil {
		t.Error("empty animation accepted")
	}
}

func TestAnimations_Table(t *testing.T) {
	table := Animations()
	for _, name := range []string{"wave", "openClose"} {
		a, ok := table[name]
		if !ok {
			t.Fatalf("animation %q missing", name)
		}
		if len(a.Frames) == 0 {
			t.Errorf("animation %q has no keyframes", name)
		}
		if a.Name != name {
			t.Errorf("animation %q carries name %q", name, a.Name)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	if got := smoothstep(0); got != 0 {
		t.Errorf("smoothstep(0) = %v", got)
	}
	if got := smoothstep(1); got != 1 {
		t.Errorf("smoothstep(1) = %v", got)
	}
	if got := smoothstep(0.5); got != 0.5 {
		t.Errorf("smoothstep(0.5) = %v", got)
	}
}

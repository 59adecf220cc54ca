package log

import "testing"

func TestL_InitializesOnDemand(t *testing.T) {
	if L() == nil {
		t.Fatal("logger not initialized")
	}
	// Helpers stay usable before and after an explicit Init; the second
	// Init is a no-op.
	Debug("debug message", "k", 1)
	Init("warn")
	if L() == nil {
		t.Fatal("logger lost after re-init")
	}
	if With("component", "test") == nil {
		t.Fatal("With returned nil logger")
	}
}

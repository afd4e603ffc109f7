package sweep

import "testing"

func TestFlagSetClearHas(t *testing.T) {
	s := &State{}
	if s.hasFlag(flagExiting) {
		t.Fatal("flagExiting should start clear")
	}
	s.setFlag(flagExiting)
	if !s.hasFlag(flagExiting) {
		t.Fatal("flagExiting should be set")
	}
	if s.hasFlag(flagBypassFFT) {
		t.Fatal("setting one flag should not set another")
	}
	s.clearFlag(flagExiting)
	if s.hasFlag(flagExiting) {
		t.Fatal("flagExiting should be cleared")
	}
}

func TestFlagIdempotent(t *testing.T) {
	s := &State{}
	s.setFlag(flagInitialized)
	s.setFlag(flagInitialized)
	if !s.hasFlag(flagInitialized) {
		t.Fatal("flagInitialized should remain set")
	}
	s.clearFlag(flagInitialized)
	s.clearFlag(flagInitialized)
	if s.hasFlag(flagInitialized) {
		t.Fatal("flagInitialized should remain clear")
	}
}

func TestLifecycleStateString(t *testing.T) {
	if LifecycleStopped.String() != "stopped" {
		t.Errorf("Stopped.String() = %q, want %q", LifecycleStopped.String(), "stopped")
	}
	if LifecycleRunning.String() != "running" {
		t.Errorf("Running.String() = %q, want %q", LifecycleRunning.String(), "running")
	}
}

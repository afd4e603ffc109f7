package sweep

import "testing"

func TestControlAPIOrdering(t *testing.T) {
	dev := &fakeDevice{}
	s := NewState(dev)

	if err := s.SetOutput(OutputModeText, OutputTypeNop, nil); err != ErrNotReady {
		t.Fatalf("SetOutput before Init: error = %v, want %v", err, ErrNotReady)
	}
	if err := s.SetRange(nil); err != ErrNotReady {
		t.Fatalf("SetRange before SetOutput: error = %v, want %v", err, ErrNotReady)
	}
	if err := s.SetupFFT(PlanEstimate, 0); err == nil {
		t.Fatalf("SetupFFT before Init: expected an error")
	}
	if err := s.Start(0); err != ErrNotReady {
		t.Fatalf("Start before SetupFFT: error = %v, want %v", err, ErrNotReady)
	}
	if err := s.Stop(); err != ErrNotReady {
		t.Fatalf("Stop while not running: error = %v, want %v", err, ErrNotReady)
	}

	if err := s.Init(0, 0); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := s.Init(0, 0); err != errAlreadyInitialized {
		t.Fatalf("second Init(): error = %v, want %v", err, errAlreadyInitialized)
	}
	if s.sampleRateHz != DefaultSampleRateHz {
		t.Errorf("sampleRateHz = %d, want default %d", s.sampleRateHz, DefaultSampleRateHz)
	}

	if err := s.SetOutput(OutputModeText, OutputTypeNop, nil); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}
	if err := s.SetRange(nil); err != nil {
		t.Fatalf("SetRange() error = %v", err)
	}
	if err := s.SetupFFT(PlanEstimate, 1_000_000); err != nil {
		t.Fatalf("SetupFFT() error = %v", err)
	}
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start()")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Fatal("IsRunning() = true after Stop()")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() should be a safe no-op, got error = %v", err)
	}
}

func TestStartResetsCounters(t *testing.T) {
	dev := &fakeDevice{}
	s := NewState(dev)
	if err := s.Init(20_000_000, 20_000_000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := s.SetOutput(OutputModeText, OutputTypeNop, nil); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}
	if err := s.SetRange(nil); err != nil {
		t.Fatalf("SetRange() error = %v", err)
	}
	if err := s.SetupFFT(PlanEstimate, 1_000_000); err != nil {
		t.Fatalf("SetupFFT() error = %v", err)
	}
	s.byteCount.Store(1234)
	s.sweepCount.Store(5)
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.ByteCount() != 0 || s.SweepCount() != 0 {
		t.Errorf("Start() did not reset counters: bytes=%d sweeps=%d", s.ByteCount(), s.SweepCount())
	}
}

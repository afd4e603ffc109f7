package sweep

import (
	"io"
	"sync/atomic"
	"time"
)

// FFTReadyFunc is invoked once per processed block, after the forward
// transform and power computation but before slicing and emission. A
// non-zero return uninstalls the callback.
type FFTReadyFunc func(s *State, frequencyHz uint64, t *Transfer) int

// RawSampleFunc is invoked once per transfer, before any block in it is
// parsed. A non-zero return uninstalls the callback.
type RawSampleFunc func(s *State, t *Transfer) int

// State is the sweep engine's control-and-pipeline state: configuration
// installed by the Control API below, read by the transfer pipeline in
// pipeline.go. Flags, callback slots and the run counters are atomics so
// the pipeline can read them without taking the optional WriteMutex;
// installing or uninstalling a callback, and the handful of multi-field
// writes around Start/Stop, take it when one is configured.
type State struct {
	device Device

	sampleRateHz  uint64
	tuneStepHz    uint64
	blocksPerXfer int

	program atomic.Pointer[Program]
	fft     *FFTContext
	sink    atomic.Pointer[Sink]

	flags      atomic.Uint32
	lifecycle  atomic.Int32
	finiteness atomic.Int32
	maxSweeps  atomic.Uint64
	sweepCount atomic.Uint64
	byteCount  atomic.Uint64

	fftReadyCB atomic.Pointer[FFTReadyFunc]
	rawCB      atomic.Pointer[RawSampleFunc]

	wm atomic.Pointer[writeMutexHolder]

	usbTransferSec  int64
	usbTransferUsec int64

	now func() time.Time
}

// NewState creates a sweep engine driving device. Call Init before any
// other Control API method.
func NewState(device Device) *State {
	return &State{device: device, now: time.Now}
}

// Init installs the sample rate and tuning step width, and the default
// full-span frequency range. A zero sampleRateHz/tuneStepHz falls back to
// DefaultSampleRateHz / the sample rate itself (one tuning step spans
// exactly the instantaneous bandwidth of one dwell).
func (s *State) Init(sampleRateHz, tuneStepHz uint64) error {
	if s.hasFlag(flagInitialized) {
		return errAlreadyInitialized
	}
	if sampleRateHz == 0 {
		sampleRateHz = DefaultSampleRateHz
	}
	if tuneStepHz == 0 {
		tuneStepHz = sampleRateHz
	}
	s.sampleRateHz = sampleRateHz
	s.tuneStepHz = tuneStepHz
	s.blocksPerXfer = BlocksPerTransfer

	tuneStepMHz := uint16(tuneStepHz / FreqOneMHz)
	prog, err := buildProgram(nil, tuneStepMHz, false)
	if err != nil {
		return err
	}
	s.program.Store(prog)
	s.setFlag(flagInitialized)
	return nil
}

// SetOutput installs the output mode, type and destination writer. w may
// be nil when typ is OutputTypeNop.
func (s *State) SetOutput(mode OutputMode, typ OutputType, w io.Writer) error {
	if !s.hasFlag(flagInitialized) {
		return ErrNotReady
	}
	s.sink.Store(&Sink{Mode: mode, Type: typ, Writer: w})
	s.setFlag(flagOutputSet)
	return nil
}

// SetRange installs the tuning plan. An empty pairs slice installs the
// default full-span range. IFFT output mode accepts at most one range.
func (s *State) SetRange(pairs []FrequencyRange) error {
	if !s.hasFlag(flagOutputSet) {
		return ErrNotReady
	}
	sink := s.sink.Load()
	tuneStepMHz := uint16(s.tuneStepHz / FreqOneMHz)
	prog, err := buildProgram(pairs, tuneStepMHz, sink.Mode == OutputModeIFFT)
	if err != nil {
		return err
	}
	s.program.Store(prog)
	return nil
}

// SetupFFT derives the FFT size from requestedBinWidthHz (or the default
// seed when zero) and builds the forward (and, in IFFT mode, inverse)
// transform plans. Requires a range to already be configured.
func (s *State) SetupFFT(strategy PlanStrategy, requestedBinWidthHz uint64) error {
	program := s.program.Load()
	if program == nil {
		return ErrNotReady
	}
	sink := s.sink.Load()
	ifftMode := sink != nil && sink.Mode == OutputModeIFFT
	ctx, err := BuildFFTContext(s.sampleRateHz, requestedBinWidthHz, program.StepCount, ifftMode, strategy)
	if err != nil {
		return err
	}
	s.fft = ctx
	return nil
}

// SetFFTReadyCallback installs or clears (cb == nil) the per-block FFT
// callback.
func (s *State) SetFFTReadyCallback(cb FFTReadyFunc) error {
	if !s.hasFlag(flagInitialized) {
		return ErrNotReady
	}
	s.lockWrite()
	defer s.unlockWrite()
	if cb == nil {
		s.fftReadyCB.Store(nil)
	} else {
		s.fftReadyCB.Store(&cb)
	}
	return nil
}

// SetRawSampleCallback installs or clears (cb == nil) the per-transfer raw
// callback. When bypass is true, FFT processing is skipped entirely and
// only this callback fires.
func (s *State) SetRawSampleCallback(cb RawSampleFunc, bypass bool) error {
	if !s.hasFlag(flagInitialized) {
		return ErrNotReady
	}
	s.lockWrite()
	defer s.unlockWrite()
	if cb == nil {
		s.rawCB.Store(nil)
	} else {
		s.rawCB.Store(&cb)
	}
	if bypass {
		s.setFlag(flagBypassFFT)
	} else {
		s.clearFlag(flagBypassFFT)
	}
	return nil
}

// SetNormalizedTimestamp selects whether the wall-clock timestamp is
// resampled at every sweep boundary (true) or at every transfer (false).
func (s *State) SetNormalizedTimestamp(normalized bool) {
	if normalized {
		s.setFlag(flagNormalizedTimestamp)
	} else {
		s.clearFlag(flagNormalizedTimestamp)
	}
}

// Start begins streaming. maxSweeps == 0 runs continuously, 1 runs a
// single sweep, and any other value stops after that many completed
// sweeps. Calling Start while already running restarts from a clean
// counter state.
func (s *State) Start(maxSweeps uint32) error {
	if s.fft == nil || !s.hasFlag(flagOutputSet) {
		return ErrNotReady
	}
	if s.lifecycle.Load() == int32(LifecycleRunning) {
		s.lifecycle.Store(int32(LifecycleStopped))
		s.clearFlag(flagSweepStarted)
	}

	s.lockWrite()
	s.maxSweeps.Store(uint64(maxSweeps))
	s.byteCount.Store(0)
	s.sweepCount.Store(0)
	s.clearFlag(flagExiting)
	s.unlockWrite()

	program := s.program.Load()
	if err := s.device.InitSweep(program.Ranges, s.blocksPerXfer, s.tuneStepHz, OffsetHz, true); err != nil {
		return err
	}

	s.lockWrite()
	switch {
	case maxSweeps == 1:
		s.finiteness.Store(int32(FinitenessOneShot))
	case maxSweeps > 1:
		s.finiteness.Store(int32(FinitenessFinite))
	default:
		s.finiteness.Store(int32(FinitenessContinuous))
	}
	s.lifecycle.Store(int32(LifecycleRunning))
	s.unlockWrite()

	if err := s.device.StartRXSweep(s.ReceiveTransfer); err != nil {
		s.lifecycle.Store(int32(LifecycleStopped))
		return err
	}
	return nil
}

// Stop requests the pipeline exit at the next block boundary and resets
// the run counters. Requires the engine to be running.
func (s *State) Stop() error {
	if s.lifecycle.Load() != int32(LifecycleRunning) {
		return ErrNotReady
	}
	s.lockWrite()
	s.setFlag(flagExiting)
	s.lifecycle.Store(int32(LifecycleStopped))
	s.byteCount.Store(0)
	s.sweepCount.Store(0)
	s.unlockWrite()
	return nil
}

// Close stops the engine if running, releases the FFT context and the
// device, and clears both callback slots. Safe to call more than once.
func (s *State) Close() error {
	if s.lifecycle.Load() == int32(LifecycleRunning) {
		if err := s.Stop(); err != nil {
			return err
		}
	}
	if s.hasFlag(flagReleased) {
		return nil
	}
	if s.fft != nil {
		s.fft.Destroy()
		s.fft = nil
	}
	s.fftReadyCB.Store(nil)
	s.rawCB.Store(nil)
	s.setFlag(flagReleased)
	if s.device != nil {
		return s.device.Close()
	}
	return nil
}

// IsRunning reports the current lifecycle state.
func (s *State) IsRunning() bool {
	return s.lifecycle.Load() == int32(LifecycleRunning)
}

// SweepCount returns the number of fully completed sweeps since the last
// Start.
func (s *State) SweepCount() uint64 { return s.sweepCount.Load() }

// ByteCount returns the number of bytes received since the last Start.
func (s *State) ByteCount() uint64 { return s.byteCount.Load() }

// FFT returns the currently configured FFT context, or nil before
// SetupFFT has run.
func (s *State) FFT() *FFTContext { return s.fft }

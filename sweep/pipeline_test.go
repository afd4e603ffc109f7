package sweep

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"
)

type fakeDevice struct {
	streaming bool
	ranges    []FrequencyRange
}

func (d *fakeDevice) InitSweep(ranges []FrequencyRange, blocksPerTransfer int, tuneStepHz, offsetHz uint64, interleaved bool) error {
	d.ranges = ranges
	return nil
}
func (d *fakeDevice) StartRXSweep(cb TransferCallback) error { d.streaming = true; return nil }
func (d *fakeDevice) IsStreaming() bool                      { return d.streaming }
func (d *fakeDevice) Close() error                           { d.streaming = false; return nil }

// makeBlock builds one well-formed zero-IQ transfer block for freqHz.
func makeBlock(freqHz uint64) []byte {
	b := make([]byte, BlockSize)
	b[0] = blockMagic0
	b[1] = blockMagic1
	binary.LittleEndian.PutUint64(b[2:10], freqHz)
	return b
}

func newTestState(t *testing.T, sampleRateHz, tuneStepHz uint64, mode OutputMode, pairs []FrequencyRange, requestedBinHz uint64, w *bytes.Buffer) (*State, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	s := NewState(dev)
	if err := s.Init(sampleRateHz, tuneStepHz); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	typ := OutputTypeNop
	var writer io.Writer
	if w != nil {
		typ = OutputTypeFile
		writer = w
	}
	if err := s.SetOutput(mode, typ, writer); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}
	if err := s.SetRange(pairs); err != nil {
		t.Fatalf("SetRange() error = %v", err)
	}
	if err := s.SetupFFT(PlanEstimate, requestedBinHz); err != nil {
		t.Fatalf("SetupFFT() error = %v", err)
	}
	return s, dev
}

// S1 — Minimal text sweep.
func TestScenarioMinimalTextSweep(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestState(t, 20_000_000, 10_000_000, OutputModeText,
		[]FrequencyRange{{MinMHz: 2400, MaxMHz: 2550}}, 1_000_000, &buf)

	if s.fft.Size() != 20 {
		t.Fatalf("FFT size = %d, want 20", s.fft.Size())
	}
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	const steps = 16
	var xfer bytes.Buffer
	for k := 0; k < steps; k++ {
		freq := uint64(2400+10*k) * FreqOneMHz
		xfer.Write(makeBlock(freq))
	}
	s.blocksPerXfer = steps

	ret := s.ReceiveTransfer(&Transfer{Buffer: xfer.Bytes(), ValidLength: xfer.Len()})
	if ret != 0 {
		t.Fatalf("ReceiveTransfer() = %d, want 0", ret)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2*steps {
		t.Fatalf("got %d lines, want %d", len(lines), 2*steps)
	}
	first := lines[0]
	if !strings.Contains(first, "2400000000, 2405000000") {
		t.Errorf("first line missing expected bounds: %q", first)
	}
	if !strings.Contains(first, "1000000.00") {
		t.Errorf("first line missing bin width: %q", first)
	}
	for _, line := range lines {
		if !strings.Contains(line, "-Inf") {
			t.Errorf("line for zero IQ input should report -Inf powers: %q", line)
		}
	}
}

// S2 — Sweep counter & ONESHOT.
func TestScenarioOneShot(t *testing.T) {
	s, _ := newTestState(t, 20_000_000, 10_000_000, OutputModeText,
		[]FrequencyRange{{MinMHz: 2400, MaxMHz: 2550}}, 1_000_000, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	const steps = 16
	s.blocksPerXfer = steps

	var sweep bytes.Buffer
	for k := 0; k < steps; k++ {
		sweep.Write(makeBlock(uint64(2400+10*k) * FreqOneMHz))
	}
	s.ReceiveTransfer(&Transfer{Buffer: sweep.Bytes(), ValidLength: sweep.Len()})
	if s.SweepCount() != 0 {
		t.Fatalf("SweepCount() = %d, want 0 before boundary revisit", s.SweepCount())
	}
	if s.hasFlag(flagExiting) {
		t.Fatalf("EXITING set before the second sweep's boundary block")
	}

	// Feed the boundary block of a second sweep: this closes out sweep 1.
	s.ReceiveTransfer(&Transfer{Buffer: makeBlock(2400 * FreqOneMHz), ValidLength: BlockSize})
	if s.SweepCount() != 1 {
		t.Fatalf("SweepCount() = %d, want 1", s.SweepCount())
	}
	if !s.hasFlag(flagExiting) {
		t.Fatalf("EXITING not set after ONESHOT sweep completed")
	}
}

// S3 — Binary record shape.
func TestScenarioBinaryRecordShape(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newTestState(t, 20_000_000, 10_000_000, OutputModeBinary,
		[]FrequencyRange{{MinMHz: 2400, MaxMHz: 2550}}, 1_000_000, &buf)
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	const steps = 16
	s.blocksPerXfer = steps

	var xfer bytes.Buffer
	for k := 0; k < steps; k++ {
		xfer.Write(makeBlock(uint64(2400+10*k) * FreqOneMHz))
	}
	s.ReceiveTransfer(&Transfer{Buffer: xfer.Bytes(), ValidLength: xfer.Len()})

	r := bufio.NewReader(&buf)
	count := 0
	for {
		var recordLen uint32
		if err := binary.Read(r, binary.LittleEndian, &recordLen); err != nil {
			break
		}
		if recordLen != 16+4*5 {
			t.Fatalf("record %d length = %d, want %d", count, recordLen, 16+4*5)
		}
		rest := make([]byte, recordLen)
		if _, err := io.ReadFull(r, rest); err != nil {
			t.Fatalf("short record %d: %v", count, err)
		}
		count++
	}
	if count != 2*steps {
		t.Fatalf("got %d records, want %d", count, 2*steps)
	}
}

// S5 — Range validation.
func TestScenarioIFFTRejectsMultipleRanges(t *testing.T) {
	dev := &fakeDevice{}
	s := NewState(dev)
	if err := s.Init(20_000_000, 20_000_000); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := s.SetOutput(OutputModeIFFT, OutputTypeNop, nil); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}
	before := s.program.Load()

	err := s.SetRange([]FrequencyRange{{MinMHz: 0, MaxMHz: 20}, {MinMHz: 100, MaxMHz: 120}})
	if err != ErrIncompatibleMode {
		t.Fatalf("SetRange() error = %v, want %v", err, ErrIncompatibleMode)
	}
	if s.program.Load() != before {
		t.Fatalf("program was mutated on a rejected SetRange")
	}
}

// S6 — Unsubscribe.
func TestScenarioFFTCallbackUnsubscribe(t *testing.T) {
	s, _ := newTestState(t, 20_000_000, 10_000_000, OutputModeText,
		[]FrequencyRange{{MinMHz: 2400, MaxMHz: 2550}}, 1_000_000, nil)

	calls := 0
	if err := s.SetFFTReadyCallback(func(*State, uint64, *Transfer) int {
		calls++
		return 1
	}); err != nil {
		t.Fatalf("SetFFTReadyCallback() error = %v", err)
	}
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.blocksPerXfer = 2

	var xfer bytes.Buffer
	xfer.Write(makeBlock(2400 * FreqOneMHz))
	xfer.Write(makeBlock(2410 * FreqOneMHz))
	s.ReceiveTransfer(&Transfer{Buffer: xfer.Bytes(), ValidLength: xfer.Len()})

	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
}

// Property 4: IFFT index map places each step's two slices at disjoint,
// non-overlapping offsets, across every tuning step of a multi-step sweep.
func TestIFFTIndexMapDisjoint(t *testing.T) {
	s, _ := newTestState(t, 20_000_000, 20_000_000, OutputModeIFFT,
		[]FrequencyRange{{MinMHz: 2400, MaxMHz: 2480}}, 1_000_000, nil)
	if err := s.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	steps := s.program.Load().Ranges[0].StepCount
	if steps != 4 {
		t.Fatalf("StepCount = %d, want 4", steps)
	}
	s.blocksPerXfer = steps

	var xfer bytes.Buffer
	for k := 0; k < steps; k++ {
		xfer.Write(makeBlock(uint64(2400+20*k) * FreqOneMHz))
	}
	s.ReceiveTransfer(&Transfer{Buffer: xfer.Bytes(), ValidLength: xfer.Len()})

	m := len(s.fft.ifftIn)
	quarter := s.fft.size / 4
	written := make(map[int]int) // index -> number of writes
	for k := 0; k < steps; k++ {
		freq := uint64(2400+20*k) * FreqOneMHz
		idx0 := int(float64(freq-2400*FreqOneMHz) / s.fft.binWidth)
		idxLower := ((idx0+m/2)%m + m) % m
		idxUpper := (idxLower + s.fft.size/2) % m
		for i := 0; i < quarter; i++ {
			written[(idxLower+i)%m]++
			written[(idxUpper+i)%m]++
		}
	}
	for idx, n := range written {
		if n != 1 {
			t.Fatalf("index %d written %d times, want exactly once", idx, n)
		}
	}
	if len(written) == 0 {
		t.Fatal("no IFFT indices were written")
	}
}

package hackrf

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/hb9tf/hackrfsweep/sweep"
)

// Simulator is a software sweep.Device: it touches no hardware and instead
// synthesizes a dithered carrier at each programmed tuning frequency, in
// the same 10-byte-header / signed-8-bit-interleaved-IQ block layout a real
// HackRF sweep stream uses. It lets the sweep engine, and anything built on
// top of it, run end to end without a radio attached, the same role
// dummy_streamer.go plays for its acquisition pipeline: a drop-in synthetic
// source behind the same device contract the real hardware satisfies.
type Simulator struct {
	// ToneHz is the offset, relative to each tuning step's center
	// frequency, of a synthetic carrier injected into the IQ stream.
	ToneHz float64
	// Amplitude is the carrier's fraction of full scale, in [0, 1].
	Amplitude float64
	// Seed fixes the dither generator so runs are reproducible. Zero
	// picks an arbitrary fixed seed rather than a time-based one, so two
	// Simulators built with a zero Seed produce identical streams.
	Seed int64

	mu         sync.Mutex
	ranges     []sweep.FrequencyRange
	blocksPerX int
	tuneStepHz uint64

	streaming atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// NewSimulator returns a Simulator with a modest off-center tone, suitable
// for exercising the sweep engine's slicing and IFFT reassembly without
// landing the synthetic signal exactly on a bin boundary.
func NewSimulator() *Simulator {
	return &Simulator{ToneHz: 2_500_000, Amplitude: 0.3}
}

// InitSweep records the tuning plan; synthesis itself only starts once
// StartRXSweep is called.
func (d *Simulator) InitSweep(ranges []sweep.FrequencyRange, blocksPerTransfer int, tuneStepHz, offsetHz uint64, interleaved bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ranges = ranges
	d.blocksPerX = blocksPerTransfer
	d.tuneStepHz = tuneStepHz
	return nil
}

// StartRXSweep launches the synthesis loop in its own goroutine, delivering
// one sweep.Transfer of blocksPerTransfer blocks at a time to cb, cycling
// through the programmed ranges indefinitely until Close or a non-zero
// return from cb.
func (d *Simulator) StartRXSweep(cb sweep.TransferCallback) error {
	d.mu.Lock()
	ranges := d.ranges
	blocksPerX := d.blocksPerX
	tuneStepHz := d.tuneStepHz
	d.mu.Unlock()

	if blocksPerX <= 0 {
		blocksPerX = sweep.BlocksPerTransfer
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.streaming.Store(true)
	go d.run(ranges, blocksPerX, tuneStepHz, cb)
	return nil
}

// IsStreaming reports whether StartRXSweep has been called and Close has
// not yet been. It stays true when the synthesis loop has ended on its own
// after a non-zero return from the callback.
func (d *Simulator) IsStreaming() bool { return d.streaming.Load() }

// Close stops the synthesis loop and waits for it to exit. Safe to call
// more than once, and safe to call before StartRXSweep.
func (d *Simulator) Close() error {
	if d.streaming.CompareAndSwap(true, false) {
		close(d.stop)
		<-d.done
	}
	return nil
}

// run walks the programmed ranges step by step, batching blocksPerX
// tuning-step blocks into each delivered Transfer, until stopped.
func (d *Simulator) run(ranges []sweep.FrequencyRange, blocksPerX int, tuneStepHz uint64, cb sweep.TransferCallback) {
	defer close(d.done)
	if len(ranges) == 0 || tuneStepHz == 0 {
		return
	}
	rnd := rand.New(rand.NewSource(d.Seed))
	phase := 0.0

	freqs := make(chan uint64)
	go func() {
		defer close(freqs)
		for {
			for _, r := range ranges {
				low := uint64(r.MinMHz) * sweep.FreqOneMHz
				for step := 0; step < r.StepCount; step++ {
					select {
					case freqs <- low + uint64(step)*tuneStepHz:
					case <-d.stop:
						return
					}
				}
			}
		}
	}()

	for {
		buf := make([]byte, blocksPerX*sweep.BlockSize)
		for j := 0; j < blocksPerX; j++ {
			freq, ok := <-freqs
			if !ok {
				return
			}
			d.synthesizeBlock(buf[j*sweep.BlockSize:(j+1)*sweep.BlockSize], freq, rnd, &phase)
		}
		select {
		case <-d.stop:
			return
		default:
		}
		if ret := cb(&sweep.Transfer{Buffer: buf, ValidLength: len(buf)}); ret != 0 {
			return
		}
	}
}

// synthesizeBlock fills one BlockSize-sized block in place: the standard
// magic+frequency header, followed by a dithered complex tone at ToneHz
// offset from freqHz, quantized to signed 8-bit interleaved I/Q the way the
// real peripheral's ADC output is packed.
func (d *Simulator) synthesizeBlock(block []byte, freqHz uint64, rnd *rand.Rand, phase *float64) {
	block[0] = 0x7F
	block[1] = 0x7F
	binary.LittleEndian.PutUint64(block[2:10], freqHz)

	step := 2 * math.Pi * d.ToneHz / float64(sweep.DefaultSampleRateHz)
	scale := d.Amplitude * 127.0
	for off := sweep.BlockHeaderSize; off+1 < len(block); off += 2 {
		dither := rnd.Float64() - 0.5
		block[off] = int8ToByte(scale*math.Cos(*phase) + dither)
		block[off+1] = int8ToByte(scale*math.Sin(*phase) + dither)
		*phase += step
	}
}

func int8ToByte(v float64) byte {
	switch {
	case v > 127:
		v = 127
	case v < -128:
		v = -128
	}
	return byte(int8(v))
}

package sweep

import (
	"encoding/binary"
	"math"
)

// ReceiveTransfer is the transfer pipeline entry point: it is the
// TransferCallback a Device invokes for every completed transfer. It is
// exported so a Device implementation can call it directly, but callers
// normally never see it — Start wires it up automatically.
func (s *State) ReceiveTransfer(t *Transfer) int {
	if cbp := s.rawCB.Load(); cbp != nil {
		if ret := (*cbp)(s, t); ret != 0 {
			s.lockWrite()
			s.rawCB.Store(nil)
			s.unlockWrite()
		}
	}

	sink := s.sink.Load()
	if sink.Type == OutputTypeFile && sink.Writer == nil {
		return -1
	}
	if s.hasFlag(flagExiting) {
		return 0
	}

	if (s.usbTransferSec == 0 && s.usbTransferUsec == 0) || !s.hasFlag(flagNormalizedTimestamp) {
		s.stampTransferTime()
	}
	s.byteCount.Add(uint64(t.ValidLength))

	fft := s.fft
	program := s.program.Load()
	firstLowHz := uint64(program.Ranges[0].MinMHz) * FreqOneMHz

	quarter := fft.size / 4
	lowerStart := 1 + 5*fft.size/8
	upperStart := 1 + fft.size/8

	for j := 0; j < s.blocksPerXfer; j++ {
		base := j * BlockSize
		if base+BlockHeaderSize > len(t.Buffer) {
			break
		}
		end := base + BlockSize
		if end > len(t.Buffer) {
			end = len(t.Buffer)
		}
		block := t.Buffer[base:end]

		if block[0] != blockMagic0 || block[1] != blockMagic1 {
			continue
		}
		freq := binary.LittleEndian.Uint64(block[2:10])

		if freq == firstLowHz {
			if s.hasFlag(flagSweepStarted) {
				s.finishSweep(fft, sink)
			}
			s.setFlag(flagSweepStarted)
		}

		if s.hasFlag(flagExiting) || !s.IsRunning() {
			return 0
		}
		if !s.hasFlag(flagSweepStarted) {
			continue
		}
		if freq > uint64(FreqMaxMHz)*FreqOneMHz {
			continue
		}
		if s.hasFlag(flagBypassFFT) {
			continue
		}

		sampleOff := BlockSize - 2*fft.size
		if sampleOff < 0 || sampleOff+2*fft.size > len(block) {
			continue
		}
		samples := block[sampleOff : sampleOff+2*fft.size]
		for i := 0; i < fft.size; i++ {
			re := float64(int8(samples[2*i]))
			im := float64(int8(samples[2*i+1]))
			fft.in[i] = complex(re*fft.window[i]/128.0, im*fft.window[i]/128.0)
		}
		if err := fft.forwardPlan.Forward(fft.out, fft.in); err != nil {
			continue
		}

		scale := 1.0 / float64(fft.size)
		for i := 0; i < fft.size; i++ {
			re := real(fft.out[i]) * scale
			im := imag(fft.out[i]) * scale
			magsq := re*re + im*im
			fft.pwr[i] = math.Log2(magsq) * 10.0 / math.Log2(10.0)
		}

		if cbp := s.fftReadyCB.Load(); cbp != nil {
			if ret := (*cbp)(s, freq, t); ret != 0 {
				s.lockWrite()
				s.fftReadyCB.Store(nil)
				s.unlockWrite()
			}
		}

		lowerPwr := fft.pwr[lowerStart : lowerStart+quarter]
		upperPwr := fft.pwr[upperStart : upperStart+quarter]

		switch sink.Mode {
		case OutputModeBinary:
			if sink.Type == OutputTypeFile {
				_ = writeBinaryRecord(sink.Writer, freq, freq+s.sampleRateHz/4, lowerPwr)
				_ = writeBinaryRecord(sink.Writer, freq+s.sampleRateHz/2, freq+3*s.sampleRateHz/4, upperPwr)
			}
		case OutputModeIFFT:
			m := len(fft.ifftIn)
			if m > 0 {
				idx0 := uint32(math.Round(float64(freq-firstLowHz) / fft.binWidth))
				idxLower := int((idx0 + uint32(m/2)) % uint32(m))
				copy(fft.ifftIn[idxLower:idxLower+quarter], fft.out[lowerStart:lowerStart+quarter])
				idxUpper := (idxLower + fft.size/2) % m
				copy(fft.ifftIn[idxUpper:idxUpper+quarter], fft.out[upperStart:upperStart+quarter])
			}
		default: // OutputModeText
			if sink.Type == OutputTypeFile {
				_ = writeTextRecord(sink.Writer, s.transferTime(), freq, freq+s.sampleRateHz/4, fft.binWidth, fft.size, lowerPwr)
				_ = writeTextRecord(sink.Writer, s.transferTime(), freq+s.sampleRateHz/2, freq+3*s.sampleRateHz/4, fft.binWidth, fft.size, upperPwr)
			}
		}
	}
	return 0
}

// finishSweep runs at the boundary between two sweeps, just before the
// SWEEP_STARTED flag is (re)asserted for the new one: it flushes any
// pending IFFT reassembly, advances the sweep counter and decides whether
// this was the last sweep the engine was asked to run.
func (s *State) finishSweep(fft *FFTContext, sink *Sink) {
	if sink.Mode == OutputModeIFFT && !s.hasFlag(flagBypassFFT) && fft.inversePlan != nil {
		if err := fft.inversePlan.Inverse(fft.ifftOut, fft.ifftIn); err == nil {
			scale := complex(1.0/float64(len(fft.ifftOut)), 0)
			for i := range fft.ifftOut {
				fft.ifftOut[i] *= scale
			}
			if sink.Type == OutputTypeFile {
				_ = writeIFFTStream(sink.Writer, fft.ifftOut)
			}
		}
	}

	s.sweepCount.Add(1)
	if s.hasFlag(flagNormalizedTimestamp) {
		s.stampTransferTime()
	}

	switch Finiteness(s.finiteness.Load()) {
	case FinitenessOneShot:
		s.setFlag(flagExiting)
	case FinitenessFinite:
		if s.sweepCount.Load() >= s.maxSweeps.Load() {
			s.setFlag(flagExiting)
		}
	}
}

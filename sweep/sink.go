package sweep

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// OutputMode selects how power-spectrum slices are shaped for emission:
// human-readable CSV-like text, a compact binary record, or reassembly
// into a wideband IFFT stream.
type OutputMode int

const (
	OutputModeText OutputMode = iota
	OutputModeBinary
	OutputModeIFFT
)

// OutputType selects whether emission actually writes anywhere. A Nop
// sink still fires every registered callback; it just never produces
// bytes, giving a callback-only mode for free as a mode/type combination
// rather than a mode of its own.
type OutputType int

const (
	OutputTypeNop OutputType = iota
	OutputTypeFile
)

// Sink bundles where output goes (Writer, under Type) with how it is
// shaped (Mode).
type Sink struct {
	Mode   OutputMode
	Type   OutputType
	Writer io.Writer
}

// writeTextRecord writes one human-readable line: timestamp, low edge,
// high edge, bin width, full FFT size, then one power value per quarter-band
// bin.
func writeTextRecord(w io.Writer, ts time.Time, hzLow, hzHigh uint64, binWidthHz float64, n int, pwr []float64) error {
	buf := fmt.Sprintf("%04d-%02d-%02d, %02d:%02d:%02d.%06d, %d, %d, %.2f, %d",
		ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond()/1000,
		hzLow, hzHigh, binWidthHz, n)
	for _, p := range pwr {
		buf += fmt.Sprintf(", %.2f", p)
	}
	buf += "\n"
	_, err := io.WriteString(w, buf)
	return err
}

// writeBinaryRecord writes a length-prefixed little-endian record:
// uint32 record length, uint64 low edge, uint64 high edge, then one
// float32 power value per bin.
func writeBinaryRecord(w io.Writer, hzLow, hzHigh uint64, pwr []float64) error {
	recordLen := uint32(16 + 4*len(pwr))
	if err := binary.Write(w, binary.LittleEndian, recordLen); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, hzLow); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, hzHigh); err != nil {
		return err
	}
	f32 := make([]float32, len(pwr))
	for i, p := range pwr {
		f32[i] = float32(p)
	}
	return binary.Write(w, binary.LittleEndian, f32)
}

// ReadBinaryRecord parses one record written by the binary output mode:
// the inverse of writeBinaryRecord. It is exported so a consumer on the
// other end of an OutputModeBinary sink — a pipe, a socket, a file reopened
// for reading — can decode the stream without reaching into package
// internals.
func ReadBinaryRecord(r io.Reader) (hzLow, hzHigh uint64, pwr []float32, err error) {
	var recordLen uint32
	if err = binary.Read(r, binary.LittleEndian, &recordLen); err != nil {
		return
	}
	if recordLen < 16 || (recordLen-16)%4 != 0 {
		err = fmt.Errorf("sweep: malformed binary record length %d", recordLen)
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &hzLow); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &hzHigh); err != nil {
		return
	}
	n := (recordLen - 16) / 4
	pwr = make([]float32, n)
	err = binary.Read(r, binary.LittleEndian, pwr)
	return
}

// writeIFFTStream writes one reassembled wideband sweep as interleaved
// little-endian float32 real/imaginary pairs.
func writeIFFTStream(w io.Writer, samples []complex128) error {
	out := make([]float32, 2*len(samples))
	for i, c := range samples {
		out[2*i] = float32(real(c))
		out[2*i+1] = float32(imag(c))
	}
	return binary.Write(w, binary.LittleEndian, out)
}

package sweep

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"time"
)

func TestWriteTextRecordFormat(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
	pwr := []float64{-10.5, -20.25}
	if err := writeTextRecord(&buf, ts, 100_000_000, 125_000_000, 1_000_000, 20, pwr); err != nil {
		t.Fatalf("writeTextRecord() error = %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "2026-01-02") {
		t.Errorf("line missing date: %q", line)
	}
	if !strings.Contains(line, "100000000, 125000000") {
		t.Errorf("line missing frequency bounds: %q", line)
	}
	if !strings.Contains(line, "-10.50") || !strings.Contains(line, "-20.25") {
		t.Errorf("line missing power values: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line not newline-terminated: %q", line)
	}
}

func TestBinaryRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pwr := []float64{1.5, -2.5, 3.25, -4.125}
	if err := writeBinaryRecord(&buf, 200_000_000, 225_000_000, pwr); err != nil {
		t.Fatalf("writeBinaryRecord() error = %v", err)
	}

	gotLow, gotHigh, gotPwr, err := ReadBinaryRecord(&buf)
	if err != nil {
		t.Fatalf("readBinaryRecord() error = %v", err)
	}
	if gotLow != 200_000_000 || gotHigh != 225_000_000 {
		t.Errorf("bounds = [%d, %d), want [200000000, 225000000)", gotLow, gotHigh)
	}
	if len(gotPwr) != len(pwr) {
		t.Fatalf("len(pwr) = %d, want %d", len(gotPwr), len(pwr))
	}
	for i, v := range pwr {
		if float64(gotPwr[i]) != v {
			t.Errorf("pwr[%d] = %v, want %v", i, gotPwr[i], v)
		}
	}
}

func TestWriteIFFTStreamInterleaving(t *testing.T) {
	var buf bytes.Buffer
	samples := []complex128{complex(1, 2), complex(-3, 4)}
	if err := writeIFFTStream(&buf, samples); err != nil {
		t.Fatalf("writeIFFTStream() error = %v", err)
	}
	if buf.Len() != 4*2*len(samples) {
		t.Errorf("len = %d, want %d", buf.Len(), 4*2*len(samples))
	}
	got := make([]float32, 2*len(samples))
	if err := binary.Read(&buf, binary.LittleEndian, got); err != nil {
		t.Fatalf("binary.Read() error = %v", err)
	}
	want := []float32{1, 2, -3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %v, want %v (real, imag interleaved)", i, got[i], want[i])
		}
	}
}

package sweep

// Transfer is one buffer's worth of samples delivered by the peripheral
// library. ValidLength may be less than len(Buffer) on a short read.
type Transfer struct {
	Buffer      []byte
	ValidLength int
}

// TransferCallback is invoked by the Device for every transfer it completes.
// A non-zero return tells the device to stop streaming.
type TransferCallback func(*Transfer) int

// Device is the peripheral contract the sweep engine drives but does not
// implement: tuning, streaming and lifecycle live entirely on the other
// side of this interface. Production code wires it to actual radio
// hardware; tests and demos wire it to a synthesized source.
type Device interface {
	// InitSweep programs the device with the tuning plan: the rounded
	// frequency ranges, how many USB blocks make up one transfer, the
	// tuning step width in Hz and the sweep style (linear vs interleaved).
	InitSweep(ranges []FrequencyRange, blocksPerTransfer int, tuneStepHz uint64, offsetHz uint64, interleaved bool) error

	// StartRXSweep begins streaming, delivering every transfer to cb until
	// the device is closed or a non-zero return from cb stops it.
	StartRXSweep(cb TransferCallback) error

	// IsStreaming reports whether the device currently believes it is
	// streaming transfers.
	IsStreaming() bool

	// Close releases the device. It is safe to call more than once.
	Close() error
}

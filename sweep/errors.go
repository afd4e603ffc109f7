package sweep

import "fmt"

// Error is a reserved-band error code mirroring the upstream hackrf_sweep_error
// enum. Negative values in the -6000..-6004 range identify sweep-engine
// failures distinctly from the peripheral library's own error space.
type Error int

const (
	ErrInvalidRange      Error = -6000
	ErrIncompatibleMode  Error = -6001
	ErrInvalidRangeCount Error = -6002
	ErrNotReady          Error = -6003
	ErrInvalidFFTSize    Error = -6004
)

func (e Error) Error() string {
	switch e {
	case ErrInvalidRange:
		return "sweep: invalid frequency range"
	case ErrIncompatibleMode:
		return "sweep: operation incompatible with current output mode"
	case ErrInvalidRangeCount:
		return "sweep: too many frequency ranges"
	case ErrNotReady:
		return "sweep: call made out of order or before required state"
	case ErrInvalidFFTSize:
		return "sweep: requested FFT size out of bounds"
	default:
		return fmt.Sprintf("sweep: error %d", int(e))
	}
}

// errAlreadyInitialized and errMutexAlreadySet live outside the reserved
// error band: the upstream library reports these through the peripheral
// library's own error space (HACKRF_ERROR_INVALID_PARAM), not through
// hackrf_sweep_error. They are kept as plain sentinel errors here.
var (
	errAlreadyInitialized = fmt.Errorf("sweep: already initialized")
	errMutexAlreadySet    = fmt.Errorf("sweep: write mutex already installed")
)

package sweep

import "time"

// stampTransferTime and transferTime are only ever called from within
// ReceiveTransfer, which a Device is expected to invoke from a single
// streaming goroutine; the two plain int64 fields behind them need no
// synchronization of their own.
func (s *State) stampTransferTime() {
	now := s.now()
	s.usbTransferSec = now.Unix()
	s.usbTransferUsec = int64(now.Nanosecond() / 1000)
}

func (s *State) transferTime() time.Time {
	return time.Unix(s.usbTransferSec, s.usbTransferUsec*1000)
}

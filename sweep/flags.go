package sweep

// LifecycleState and Finiteness model what the upstream C implementation
// crammed into a single bitset as two small, pairwise-exclusive tagged
// alternatives. The remaining control bits genuinely are independent and
// stay as a bitset below.
type LifecycleState int32

const (
	LifecycleStopped LifecycleState = iota
	LifecycleRunning
)

func (s LifecycleState) String() string {
	if s == LifecycleRunning {
		return "running"
	}
	return "stopped"
}

// Finiteness selects whether a started sweep run continues forever, stops
// after a caller-chosen number of full sweeps, or stops after exactly one.
type Finiteness int32

const (
	FinitenessContinuous Finiteness = iota
	FinitenessFinite
	FinitenessOneShot
)

// flag is the bitset of independent control bits that are not better
// modeled as one of the tagged alternatives above.
type flag uint32

const (
	flagExiting flag = 1 << iota
	flagInitialized
	flagReleased
	flagSweepStarted
	flagOutputSet
	flagNormalizedTimestamp
	flagBypassFFT
)

func (s *State) hasFlag(f flag) bool {
	return flag(s.flags.Load())&f != 0
}

func (s *State) setFlag(f flag) {
	for {
		old := s.flags.Load()
		if old&uint32(f) != 0 {
			return
		}
		if s.flags.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

func (s *State) clearFlag(f flag) {
	for {
		old := s.flags.Load()
		if old&uint32(f) == 0 {
			return
		}
		if s.flags.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

package sweep

import (
	"sync"
	"testing"
)

type countingMutex struct {
	mu    sync.Mutex
	locks int
}

func (m *countingMutex) Lock() {
	m.mu.Lock()
	m.locks++
}
func (m *countingMutex) Unlock() { m.mu.Unlock() }

func TestSetWriteMutexFirstSetterWins(t *testing.T) {
	s := &State{}
	m1 := &countingMutex{}
	if err := s.SetWriteMutex(m1); err != nil {
		t.Fatalf("first SetWriteMutex() error = %v", err)
	}
	m2 := &countingMutex{}
	if err := s.SetWriteMutex(m2); err != errMutexAlreadySet {
		t.Fatalf("second SetWriteMutex() error = %v, want %v", err, errMutexAlreadySet)
	}

	s.lockWrite()
	s.unlockWrite()
	if m1.locks != 1 {
		t.Errorf("m1.locks = %d, want 1", m1.locks)
	}
	if m2.locks != 0 {
		t.Errorf("m2.locks = %d, want 0 (second mutex must never be installed)", m2.locks)
	}
}

func TestWriteMutexOptional(t *testing.T) {
	s := &State{}
	// No panic, no deadlock, when no mutex has been installed.
	s.lockWrite()
	s.unlockWrite()
}

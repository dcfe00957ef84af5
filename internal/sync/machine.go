// Package sync drives the recurring fetch-process-upload-advance cycle
// that pulls pages from the remote source, reshapes them, writes them to
// the document store and persists pagination progress between ticks.
package sync

import (
	"fmt"
	"sync/atomic"
)

// State is one phase of the sync cycle.
type State int32

const (
	Ready State = iota
	Fetching
	Processing
	Uploading
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Fetching:
		return "fetching"
	case Processing:
		return "processing"
	case Uploading:
		return "uploading"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// transitions is the only legal successor of each state. The cycle is
// ready -> fetching -> processing -> uploading -> ready.
var transitions = map[State]State{
	Ready:      Fetching,
	Fetching:   Processing,
	Processing: Uploading,
	Uploading:  Ready,
}

// TransitionError is a programming error: the engine attempted a state
// change the cycle does not allow.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("sync: illegal transition %s -> %s", e.From, e.To)
}

// Machine holds the cycle's current state. State may be read from another
// goroutine (the scheduler's stall check), so it is stored atomically.
type Machine struct {
	state atomic.Int32
}

func (m *Machine) State() State {
	return State(m.state.Load())
}

// To advances the machine to next, rejecting any transition the cycle does
// not define rather than silently accepting it.
func (m *Machine) To(next State) error {
	current := m.State()
	if transitions[current] != next {
		return &TransitionError{From: current, To: next}
	}
	if !m.state.CompareAndSwap(int32(current), int32(next)) {
		return &TransitionError{From: m.State(), To: next}
	}
	return nil
}

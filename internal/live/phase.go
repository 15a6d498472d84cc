package live

import (
	"sync"
	"time"
)

// StepPhase is one step of the per-question client loop.
type StepPhase string

const (
	StepAsking   StepPhase = "asking"
	StepFeedback StepPhase = "feedback"
	StepColoring StepPhase = "coloring"
)

// PhaseMachine drives the asking → feedback → coloring → asking cycle with
// exactly one authoritative advance per timer fire. Timers armed before an
// advance are invalidated by it, so a stale "move on" callback can never
// fire into a phase it was not armed for.
type PhaseMachine struct {
	mu    sync.Mutex
	phase StepPhase
	epoch uint64
}

func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{phase: StepAsking}
}

func (m *PhaseMachine) Phase() StepPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Advance moves to the next phase immediately and invalidates every
// outstanding scheduled advance.
func (m *PhaseMachine) Advance() StepPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked()
	return m.phase
}

// AdvanceAfter schedules a single advance after d. The schedule is dropped
// silently if any other advance happens first.
func (m *PhaseMachine) AdvanceAfter(d time.Duration) *time.Timer {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	return time.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if epoch != m.epoch {
			return
		}
		m.advanceLocked()
	})
}

func (m *PhaseMachine) advanceLocked() {
	m.epoch++
	switch m.phase {
	case StepAsking:
		m.phase = StepFeedback
	case StepFeedback:
		m.phase = StepColoring
	case StepColoring:
		m.phase = StepAsking
	}
}

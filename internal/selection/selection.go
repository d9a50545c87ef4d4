// Package selection keeps the armed start date of the two-click absence range picker.
package selection

import (
	"context"
	"sync"
	"time"
)

// Store holds at most one armed start date per staff member.
type Store interface {
	// Press consumes the armed date and returns it with true. With nothing armed it
	// arms date and returns false. Both happen in one step.
	Press(ctx context.Context, staffID uint, date time.Time) (time.Time, bool, error)
	// Clear drops any armed date.
	Clear(ctx context.Context, staffID uint) error
}

type armed struct {
	start     time.Time
	expiresAt time.Time
}

// Memory is a process-local Store. A zero ttl keeps selections until they are taken.
type Memory struct {
	mu    sync.Mutex
	state map[uint]armed
	ttl   time.Duration
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		state: make(map[uint]armed),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Arm records start as the pending first click.
func (m *Memory) Arm(_ context.Context, staffID uint, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.arm(staffID, start)
	return nil
}

// Take returns and clears the armed date.
func (m *Memory) Take(_ context.Context, staffID uint) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, ok := m.take(staffID)
	return start, ok, nil
}

func (m *Memory) Press(_ context.Context, staffID uint, date time.Time) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start, ok := m.take(staffID); ok {
		return start, true, nil
	}
	m.arm(staffID, date)
	return time.Time{}, false, nil
}

func (m *Memory) arm(staffID uint, start time.Time) {
	entry := armed{start: start}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.state[staffID] = entry
}

func (m *Memory) take(staffID uint) (time.Time, bool) {
	entry, ok := m.state[staffID]
	if !ok {
		return time.Time{}, false
	}
	delete(m.state, staffID)

	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		return time.Time{}, false
	}
	return entry.start, true
}

func (m *Memory) Clear(_ context.Context, staffID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.state, staffID)
	return nil
}

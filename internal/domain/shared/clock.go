package shared

import "time"

// Clock is the time source every usecase reads through, so tests can pin
// and advance time deterministically.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock reads the system clock. All timestamps in the domain are UTC;
// region-local rendering happens at the edges.
type RealClock struct{}

// NewRealClock returns the production clock.
func NewRealClock() Clock {
	return &RealClock{}
}

// Now returns the current UTC time.
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for d.
func (r *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// MockClock is a hand-cranked clock for tests. It only moves when told
// to, and Sleep advances it instead of blocking so retry backoff runs
// instantly under test.
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock pins a MockClock at start, or at the wall clock when start
// is the zero time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{CurrentTime: start}
}

// Now returns the pinned time.
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Sleep advances the pinned time by d without blocking.
func (m *MockClock) Sleep(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// Advance cranks the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime repins the clock.
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}

package sim

import "sync/atomic"

// Day is a simulated day index. Day 0 is the start of a run.
type Day int64

// OneDay is the fixed step length of the simulation.
const OneDay Day = 1

// Days returns d as a plain integer count.
func (d Day) Days() int64 {
	return int64(d)
}

// Clock is a monotonic logical day counter.
//
// Every call to Next advances the clock by exactly OneDay. Reset returns the
// clock to its starting day so a harness can replay runs with identical
// timestamps.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), though
// the simulation loop itself is single-threaded.
type Clock struct {
	start Day
	now   atomic.Int64
}

// NewClock creates a clock at day 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at a specific day.
// Reset returns to this day.
func NewClockAt(start Day) *Clock {
	c := &Clock{start: start}
	c.now.Store(int64(start))
	return c
}

// Now returns the current day without advancing.
func (c *Clock) Now() Day {
	return Day(c.now.Load())
}

// Next advances the clock by one day and returns the new day.
func (c *Clock) Next() Day {
	return Day(c.now.Add(int64(OneDay)))
}

// Reset moves the clock back to its starting day.
func (c *Clock) Reset() {
	c.now.Store(int64(c.start))
}

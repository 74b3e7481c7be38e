// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock implements the wall-clock pacing source that drives the
// CPU in lock-step with other simulated chips. The clock never calls back
// into the CPU; the driver interleaves WaitForNextCycle, the CPU tick, and
// NextCycle on a single goroutine.
package clock

import "time"

// A Clock paces an emulation at a fixed frequency. Deadlines advance by a
// fixed quantum from the previous deadline rather than from the current
// time, so scheduling jitter does not accumulate into drift.
type Clock struct {
	cyclePeriod   time.Duration
	nextCycleTime time.Time
	cycleCount    uint64
}

// New creates a clock ticking at 'frequency' cycles per second.
func New(frequency uint64) *Clock {
	return &Clock{
		cyclePeriod: time.Second / time.Duration(frequency),
	}
}

// Start arms the clock: the first cycle's deadline is one period from now.
func (c *Clock) Start() {
	c.nextCycleTime = time.Now().Add(c.cyclePeriod)
}

// WaitForNextCycle sleeps until the current cycle's deadline has been
// reached. If the deadline has already passed, it returns immediately.
func (c *Clock) WaitForNextCycle() {
	if d := time.Until(c.nextCycleTime); d > 0 {
		time.Sleep(d)
	}
}

// NextCycle advances the deadline by one period and bumps the cycle
// counter.
func (c *Clock) NextCycle() {
	c.nextCycleTime = c.nextCycleTime.Add(c.cyclePeriod)
	c.cycleCount++
}

// Cycle returns the number of cycles elapsed since Start.
func (c *Clock) Cycle() uint64 {
	return c.cycleCount
}

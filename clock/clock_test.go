package clock_test

import (
	"testing"
	"time"

	"github.com/weirdfoo/My6502/clock"
)

func TestCycleCounting(t *testing.T) {
	c := clock.New(1000000)
	c.Start()

	if c.Cycle() != 0 {
		t.Errorf("Cycle incorrect before first cycle. got: %d", c.Cycle())
	}
	for i := 0; i < 5; i++ {
		c.NextCycle()
	}
	if c.Cycle() != 5 {
		t.Errorf("Cycle incorrect. exp: 5, got: %d", c.Cycle())
	}
}

// A clock that has fallen behind must not sleep.
func TestWaitNoBacklogSleep(t *testing.T) {
	c := clock.New(1000000)
	c.Start()
	time.Sleep(2 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 100; i++ {
		c.WaitForNextCycle()
		c.NextCycle()
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("catch-up took too long: %v", elapsed)
	}
}

func TestPacing(t *testing.T) {
	// 1 kHz: 20 cycles should take roughly 20ms. Allow generous slack
	// for scheduling noise.
	c := clock.New(1000)
	c.Start()

	start := time.Now()
	for i := 0; i < 20; i++ {
		c.WaitForNextCycle()
		c.NextCycle()
	}
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("clock ran too fast: %v", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("clock ran too slow: %v", elapsed)
	}
}

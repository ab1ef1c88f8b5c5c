package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/psycare/psycare-go/pkg/logging"
)

func TestReminderCycle(t *testing.T) {
	shown := make(chan struct{}, 16)
	dismissed := make(chan struct{}, 16)
	var ticks []int

	w := New(Config{
		Interval:  20 * time.Millisecond,
		Countdown: 3,
		TickEvery: 2 * time.Millisecond,
		OnShow:    func() { shown <- struct{}{} },
		OnTick:    func(remaining int) { ticks = append(ticks, remaining) },
		OnDismiss: func() { dismissed <- struct{}{} },
		Logger:    logging.Nop(),
	})
	w.Start()

	select {
	case <-shown:
	case <-time.After(time.Second):
		t.Fatal("reminder never shown")
	}

	select {
	case <-dismissed:
	case <-time.After(time.Second):
		t.Fatal("reminder never dismissed")
	}

	w.Stop()
	assert.False(t, w.Showing())
	assert.Equal(t, []int{2, 1, 0}, ticks[:3])
}

func TestStopBeforeFire(t *testing.T) {
	fired := false
	w := New(Config{
		Interval: time.Hour,
		OnShow:   func() { fired = true },
		Logger:   logging.Nop(),
	})
	w.Start()
	w.Stop()
	assert.False(t, fired)
	assert.False(t, w.Showing())
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(Config{Interval: time.Hour, Logger: logging.Nop()})
	w.Start()
	w.Stop()
	w.Stop()
}

func TestDefaults(t *testing.T) {
	w := New(Config{Logger: logging.Nop()})
	assert.Equal(t, 3*time.Minute, w.interval)
	assert.Equal(t, 10, w.countdown)
	assert.Equal(t, time.Second, w.tickEvery)
}

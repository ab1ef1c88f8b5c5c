// Package reminder nudges the user to take a screen break at a fixed
// interval. Each firing shows a reminder with a short countdown, then
// dismisses itself.
package reminder

import (
	"sync"
	"time"

	"github.com/psycare/psycare-go/pkg/logging"
)

// Config holds worker construction options.
type Config struct {
	Interval  time.Duration
	Countdown int           // seconds the reminder stays visible
	TickEvery time.Duration // countdown tick; defaults to one second

	OnShow    func()
	OnTick    func(remaining int)
	OnDismiss func()

	Logger *logging.Logger
}

// Worker fires break reminders until stopped.
type Worker struct {
	interval  time.Duration
	countdown int
	tickEvery time.Duration

	onShow    func()
	onTick    func(remaining int)
	onDismiss func()
	logger    *logging.Logger

	mu      sync.Mutex
	showing bool
	started bool

	stop chan struct{}
	done chan struct{}
}

// New creates a break reminder worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 3 * time.Minute
	}
	countdown := cfg.Countdown
	if countdown <= 0 {
		countdown = 10
	}
	tickEvery := cfg.TickEvery
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &Worker{
		interval:  interval,
		countdown: countdown,
		tickEvery: tickEvery,
		onShow:    cfg.OnShow,
		onTick:    cfg.OnTick,
		onDismiss: cfg.OnDismiss,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the reminder loop. Calling Start twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

// Stop tears the worker down and waits for the loop to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}

// Showing reports whether a reminder is currently visible.
func (w *Worker) Showing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.showing
}

func (w *Worker) run() {
	defer close(w.done)
	interval := time.NewTicker(w.interval)
	defer interval.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-interval.C:
			w.setShowing(true)
			if w.onShow != nil {
				w.onShow()
			}
			remaining := w.countdown
			sec := time.NewTicker(w.tickEvery)
			for remaining > 0 {
				select {
				case <-w.stop:
					sec.Stop()
					return
				case <-interval.C:
					// Fired again while visible; restart the countdown.
					remaining = w.countdown
				case <-sec.C:
					remaining--
					if w.onTick != nil {
						w.onTick(remaining)
					}
				}
			}
			sec.Stop()
			w.setShowing(false)
			if w.onDismiss != nil {
				w.onDismiss()
			}
		}
	}
}

func (w *Worker) setShowing(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showing = v
}

package dashboard

import (
	"sync"
	"time"
)

// Scheduler runs f after d. f must be delivered on the UI goroutine; the returned func
// cancels a call that has not run yet.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func())
}

// TimerScheduler schedules with time.AfterFunc and hands the call to Do, which marshals it
// onto the UI goroutine (fyne.Do in the viewer).
type TimerScheduler struct {
	Do func(func())
}

func (s TimerScheduler) AfterFunc(d time.Duration, f func()) func() {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	t := time.AfterFunc(d, func() {
		run := func() {
			mu.Lock()
			c := cancelled
			mu.Unlock()
			if !c {
				f()
			}
		}
		if s.Do != nil {
			s.Do(run)
			return
		}
		run()
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		t.Stop()
	}
}

// debouncer runs fn once after events stop arriving for delay. A zero delay or missing
// scheduler runs fn synchronously on every event.
type debouncer struct {
	sched Scheduler
	delay time.Duration
	fn    func()
	stop  func()
}

func newDebouncer(s Scheduler, delay time.Duration, fn func()) *debouncer {
	return &debouncer{sched: s, delay: delay, fn: fn}
}

func (b *debouncer) trigger() {
	if b.delay <= 0 || b.sched == nil {
		b.fn()
		return
	}
	b.cancel()
	b.stop = b.sched.AfterFunc(b.delay, func() {
		b.stop = nil
		b.fn()
	})
}

// cancel drops a pending call.
func (b *debouncer) cancel() {
	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
}

package testutil

import (
	"context"
	"time"
)

// ManualScheduler is a deterministic stand-in for the event loop. Calls queue up
// until the test completes them, and tickers fire only when the test says so.
// It runs everything on the test goroutine.
type ManualScheduler struct {
	pending []*PendingCall
	tickers []*ManualTicker
}

type PendingCall struct {
	ctx  context.Context
	call func(ctx context.Context) error
	done func(err error)
}

// Context exposes the context the flow handed to the call.
func (p *PendingCall) Context() context.Context { return p.ctx }

type ManualTicker struct {
	Interval time.Duration
	tick     func()
	stopped  bool
}

func (t *ManualTicker) Stopped() bool { return t.stopped }

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Go(ctx context.Context, call func(ctx context.Context) error, done func(err error)) {
	s.pending = append(s.pending, &PendingCall{ctx: ctx, call: call, done: done})
}

func (s *ManualScheduler) Every(interval time.Duration, tick func()) func() {
	t := &ManualTicker{Interval: interval, tick: tick}
	s.tickers = append(s.tickers, t)
	return func() { t.stopped = true }
}

// Pending returns the number of queued calls.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Next removes the oldest queued call without running it.
func (s *ManualScheduler) Next() *PendingCall {
	if len(s.pending) == 0 {
		return nil
	}
	p := s.pending[0]
	s.pending = s.pending[1:]
	return p
}

// Run executes the call and delivers its own result.
func (p *PendingCall) Run() {
	p.done(p.call(p.ctx))
}

// Complete executes the call but delivers err instead of its result, letting a
// test simulate a completion regardless of what the call did.
func (p *PendingCall) Complete(err error) {
	_ = p.call(p.ctx)
	p.done(err)
}

// Flush runs queued calls, including ones queued by completions, until none remain.
func (s *ManualScheduler) Flush() {
	for p := s.Next(); p != nil; p = s.Next() {
		p.Run()
	}
}

// Tick fires every live ticker n times.
func (s *ManualScheduler) Tick(n int) {
	for range n {
		for _, t := range s.tickers {
			if !t.stopped {
				t.tick()
			}
		}
	}
}

// ActiveTickers counts tickers that have not been stopped.
func (s *ManualScheduler) ActiveTickers() int {
	n := 0
	for _, t := range s.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Package loop serializes onboarding events. Every state transition runs inside
// Do under a single lock, so transitions never interleave; asynchronous calls and
// ticker ticks re-enter through Do when they complete.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler is what the flows need from an event loop: a way to run one
// external call off-loop and a cancellable periodic tick.
type Scheduler interface {
	// Go runs call on its own goroutine and delivers its result to done on the loop.
	Go(ctx context.Context, call func(ctx context.Context) error, done func(err error))
	// Every delivers tick on the loop once per interval until stop is called.
	Every(interval time.Duration, tick func()) (stop func())
}

type Loop struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	clock  clockwork.Clock
	logger *slog.Logger
	closed chan struct{}
	once   sync.Once
}

type Option func(*Loop)

func WithClock(clock clockwork.Clock) Option {
	return func(l *Loop) {
		if clock != nil {
			l.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func New(opts ...Option) *Loop {
	l := &Loop{
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do runs fn to completion with exclusive access to loop-owned state.
// fn must not call Do itself.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

func (l *Loop) Go(ctx context.Context, call func(ctx context.Context) error, done func(err error)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		err := call(ctx)
		select {
		case <-l.closed:
			l.logger.Debug("loop closed, dropping call completion", "error", err)
			return
		default:
		}
		l.Do(func() { done(err) })
	}()
}

func (l *Loop) Every(interval time.Duration, tick func()) (stop func()) {
	ticker := l.clock.NewTicker(interval)
	quit := make(chan struct{})
	var once sync.Once

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-l.closed:
				return
			case <-ticker.Chan():
				l.Do(func() {
					// stop may have been called while this tick waited for the lock
					select {
					case <-quit:
					default:
						tick()
					}
				})
			}
		}
	}()

	return func() { once.Do(func() { close(quit) }) }
}

// Close stops all tickers, drops pending completions and waits for goroutines
// to exit. It must not be called from inside Do.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.closed) })
	l.wg.Wait()
}

var _ Scheduler = (*Loop)(nil)

package verification

import (
	"context"
	"log/slog"
	"time"

	"zirrmi/internal/platform/loop"
	dErrors "zirrmi/pkg/domain-errors"
)

// Service delivers and checks one-time codes.
type Service interface {
	Send(ctx context.Context, ch Channel, destination string) error
	Confirm(ctx context.Context, ch Channel, destination, code string) error
}

const (
	sendFailedMessage   = "We could not send your code. Please try again."
	verifyFailedMessage = "That code is not valid. Please try again."
)

// Flow runs the verification modal: choose a channel, request a code, type the
// six digits, confirm. All methods must be called from the onboarding loop.
type Flow struct {
	service    Service
	sched      loop.Scheduler
	logger     *slog.Logger
	notifier   Notifier
	onComplete func(Result)

	dest    Destination
	channel Channel
	// sentOn is the channel the last delivered code went out on.
	sentOn   Channel
	status   Status
	code     Code
	cooldown time.Duration
	// remaining is the resend cooldown in whole seconds.
	remaining  int
	stopTicker func()
	failure    string

	epoch  uint64
	cancel context.CancelFunc
}

type Option func(*Flow)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(f *Flow) {
		if n != nil {
			f.notifier = n
		}
	}
}

func WithOnComplete(fn func(Result)) Option {
	return func(f *Flow) {
		f.onComplete = fn
	}
}

// WithCooldown overrides the resend wait. Values under a second are ignored.
func WithCooldown(d time.Duration) Option {
	return func(f *Flow) {
		if d >= time.Second {
			f.cooldown = d
		}
	}
}

func New(service Service, sched loop.Scheduler, dest Destination, opts ...Option) *Flow {
	f := &Flow{
		service:  service,
		sched:    sched,
		logger:   slog.Default(),
		notifier: nopNotifier{},
		dest:     dest,
		channel:  ChannelEmail,
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Channel() Channel         { return f.channel }
func (f *Flow) Status() Status           { return f.status }
func (f *Flow) Code() Code               { return f.code }
func (f *Flow) Failure() string          { return f.failure }
func (f *Flow) Destination() Destination { return f.dest }

// CooldownRemaining is the number of seconds until a resend is allowed.
func (f *Flow) CooldownRemaining() int { return f.remaining }

// CanSend reports whether SendCode would be accepted.
func (f *Flow) CanSend() bool {
	return (f.status == StatusIdle || f.status == StatusCodeSent) &&
		f.remaining == 0 && f.dest.For(f.channel) != ""
}

// CanVerify reports whether Verify would be accepted.
func (f *Flow) CanVerify() bool {
	return f.status == StatusCodeSent && f.code.Complete()
}

// SelectChannel switches the delivery channel. A running cooldown keeps going.
func (f *Flow) SelectChannel(ch Channel) error {
	if f.status != StatusIdle && f.status != StatusCodeSent {
		return dErrors.New(dErrors.CodeInvalidState, "channel can not be changed now")
	}
	f.channel = ch
	return nil
}

// SendCode asks the service to deliver a code on the selected channel. On
// success the resend cooldown starts.
func (f *Flow) SendCode(ctx context.Context) error {
	if f.status != StatusIdle && f.status != StatusCodeSent {
		return dErrors.New(dErrors.CodeInvalidState, "a code can not be sent now")
	}
	if f.remaining > 0 {
		return dErrors.New(dErrors.CodeInvalidState, "please wait before requesting another code")
	}
	dest := f.dest.For(f.channel)
	if dest == "" {
		return dErrors.Validation("no destination for the selected channel",
			dErrors.FieldError{Field: "channel", Message: "No " + f.channel.String() + " destination on file"})
	}

	prev := f.status
	ch := f.channel
	epoch := f.epoch
	f.status = StatusSending
	f.failure = ""
	f.start(ctx, func(ctx context.Context) error {
		return f.service.Send(ctx, ch, dest)
	}, func(err error) {
		if epoch != f.epoch {
			f.logger.Debug("dropping stale code delivery completion", "channel", ch.String(), "error", err)
			return
		}
		f.done()
		if err != nil {
			f.status = prev
			f.failure = dErrors.MessageOf(err, sendFailedMessage)
			f.logger.Warn("verification code delivery failed", "channel", ch.String(), "error", err)
			return
		}
		f.status = StatusCodeSent
		f.sentOn = ch
		f.startCooldown()
	})
	return nil
}

// EnterDigit sets position index to a single digit or clears it with "".
// A digit moves focus to the next position.
func (f *Flow) EnterDigit(index int, value string) error {
	if f.status != StatusCodeSent {
		return dErrors.New(dErrors.CodeInvalidState, "no code has been sent")
	}
	if index < 0 || index >= CodeLength {
		return dErrors.New(dErrors.CodeInvalidInput, "code position out of range")
	}
	switch {
	case value == "":
		f.code[index] = 0
	case len(value) == 1 && value[0] >= '0' && value[0] <= '9':
		f.code[index] = value[0]
		if index < CodeLength-1 {
			f.notifier.Focus(index + 1)
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "a code position holds one digit")
	}
	return nil
}

// Backspace clears position index, or moves focus back when it is already empty.
func (f *Flow) Backspace(index int) error {
	if f.status != StatusCodeSent {
		return dErrors.New(dErrors.CodeInvalidState, "no code has been sent")
	}
	if index < 0 || index >= CodeLength {
		return dErrors.New(dErrors.CodeInvalidInput, "code position out of range")
	}
	if f.code[index] == 0 {
		if index > 0 {
			f.notifier.Focus(index - 1)
		}
		return nil
	}
	f.code[index] = 0
	return nil
}

// Verify submits the entered code against the channel it was sent on. It
// requires all positions to be filled.
func (f *Flow) Verify(ctx context.Context) error {
	if f.status != StatusCodeSent {
		return dErrors.New(dErrors.CodeInvalidState, "no code has been sent")
	}
	if !f.code.Complete() {
		return dErrors.Validation("enter all six digits",
			dErrors.FieldError{Field: "code", Message: "Enter the 6-digit code"})
	}

	ch := f.sentOn
	dest := f.dest.For(ch)
	code := f.code.String()
	epoch := f.epoch
	f.status = StatusVerifying
	f.failure = ""
	f.start(ctx, func(ctx context.Context) error {
		return f.service.Confirm(ctx, ch, dest, code)
	}, func(err error) {
		if epoch != f.epoch {
			f.logger.Debug("dropping stale verification completion", "channel", ch.String(), "error", err)
			return
		}
		f.done()
		if err != nil {
			f.status = StatusCodeSent
			f.failure = dErrors.MessageOf(err, verifyFailedMessage)
			f.logger.Info("verification code rejected", "channel", ch.String(), "error", err)
			return
		}
		f.status = StatusVerified
		f.stopCooldown()
		if f.onComplete != nil {
			f.onComplete(Result{Channel: ch, Destination: dest})
		}
	})
	return nil
}

// Close tears the flow down: the cooldown ticker is stopped and an in-flight
// call is cancelled with its result ignored.
func (f *Flow) Close() {
	f.epoch++
	f.stopCooldown()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Flow) start(ctx context.Context, call func(context.Context) error, done func(error)) {
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.cancel = cancel
	f.sched.Go(callCtx, call, done)
}

func (f *Flow) done() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Flow) startCooldown() {
	f.stopCooldown()
	f.remaining = int(f.cooldown / time.Second)
	f.stopTicker = f.sched.Every(time.Second, f.tick)
}

func (f *Flow) tick() {
	if f.remaining > 0 {
		f.remaining--
	}
	if f.remaining == 0 {
		f.stopCooldown()
	}
}

func (f *Flow) stopCooldown() {
	if f.stopTicker != nil {
		f.stopTicker()
		f.stopTicker = nil
	}
}

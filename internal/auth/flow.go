package auth

import (
	"context"
	"log/slog"
	"strings"

	"zirrmi/internal/platform/loop"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/email"
)

// Service checks credentials or creates an account.
type Service interface {
	Authenticate(ctx context.Context, creds Credentials) (UserData, error)
}

const authFailedMessage = "Authentication failed. Please try again."

// Flow is the login/signup modal state machine. All methods must be called from
// the onboarding loop.
type Flow struct {
	service    Service
	sched      loop.Scheduler
	logger     *slog.Logger
	onComplete func(Result)

	mode       Mode
	status     Status
	form       Form
	violations []dErrors.FieldError
	failure    string
	user       UserData

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

func WithOnComplete(fn func(Result)) Option {
	return func(f *Flow) {
		f.onComplete = fn
	}
}

// WithMode picks the mode the modal opens in. Login is the default.
func WithMode(m Mode) Option {
	return func(f *Flow) {
		f.mode = m
	}
}

func New(service Service, sched loop.Scheduler, opts ...Option) *Flow {
	f := &Flow{
		service: service,
		sched:   sched,
		logger:  slog.Default(),
		mode:    ModeLogin,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Mode() Mode      { return f.mode }
func (f *Flow) Status() Status  { return f.status }
func (f *Flow) Failure() string { return f.failure }
func (f *Flow) User() UserData  { return f.user }
func (f *Flow) Form() Form      { return f.form }

func (f *Flow) Violations() []dErrors.FieldError {
	return append([]dErrors.FieldError(nil), f.violations...)
}

// ToggleMode swaps login and signup. The form starts over.
func (f *Flow) ToggleMode() error {
	if f.mode == ModeLogin {
		return f.SetMode(ModeSignup)
	}
	return f.SetMode(ModeLogin)
}

// SetMode switches to m, discarding entered values, even when m is already
// active.
func (f *Flow) SetMode(m Mode) error {
	if err := f.requireEditing(); err != nil {
		return err
	}
	f.mode = m
	f.reset()
	return nil
}

// Update sets one input. Editing a field clears its violation.
func (f *Flow) Update(field Field, value string) error {
	if err := f.requireEditing(); err != nil {
		return err
	}
	if !f.form.set(field, value) {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown auth field")
	}
	kept := f.violations[:0]
	for _, v := range f.violations {
		if v.Field != field.String() {
			kept = append(kept, v)
		}
	}
	f.violations = kept
	return nil
}

// Fill replaces every input at once.
func (f *Flow) Fill(form Form) error {
	if err := f.requireEditing(); err != nil {
		return err
	}
	f.form = form
	f.violations = nil
	return nil
}

// Submit validates the form for the current mode and, when it passes, calls
// the service. A validation failure never reaches the service.
func (f *Flow) Submit(ctx context.Context) error {
	if err := f.requireEditing(); err != nil {
		return err
	}
	if v := validate(f.mode, f.form); len(v) > 0 {
		f.violations = v
		return dErrors.Validation("please correct the highlighted fields", v...)
	}

	creds := f.credentials()
	mode := f.mode
	epoch := f.epoch
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.cancel = cancel
	f.status = StatusSubmitting
	f.violations = nil
	f.failure = ""

	var user UserData
	f.sched.Go(callCtx,
		func(ctx context.Context) error {
			var err error
			user, err = f.service.Authenticate(ctx, creds)
			return err
		},
		func(err error) { f.finish(epoch, mode, user, err) },
	)
	return nil
}

func (f *Flow) finish(epoch uint64, mode Mode, user UserData, err error) {
	if epoch != f.epoch {
		f.logger.Debug("dropping stale auth completion", "mode", mode.String(), "error", err)
		return
	}
	f.cancel()
	f.cancel = nil
	if err != nil {
		f.status = StatusEditing
		f.failure = dErrors.MessageOf(err, authFailedMessage)
		f.logger.Info("authentication rejected", "mode", mode.String(), "error", err)
		return
	}
	f.status = StatusSucceeded
	f.user = user
	if f.onComplete != nil {
		f.onComplete(Result{Mode: mode, User: user})
	}
}

// Close discards the flow; an in-flight call is cancelled and its result ignored.
func (f *Flow) Close() {
	f.epoch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Flow) credentials() Credentials {
	c := Credentials{
		Mode:     f.mode,
		Email:    strings.TrimSpace(f.form.Email),
		Password: f.form.Password,
	}
	if f.mode == ModeSignup {
		c.FullName = strings.TrimSpace(f.form.FullName)
		c.Phone = strings.TrimSpace(f.form.Phone)
		c.CompanyName = strings.TrimSpace(f.form.CompanyName)
	}
	return c
}

func (f *Flow) reset() {
	f.form = Form{}
	f.violations = nil
	f.failure = ""
}

func (f *Flow) requireEditing() error {
	switch f.status {
	case StatusSubmitting:
		return dErrors.New(dErrors.CodeInvalidState, "authentication in progress")
	case StatusSucceeded:
		return dErrors.New(dErrors.CodeInvalidState, "already authenticated")
	}
	return nil
}

func validate(m Mode, form Form) []dErrors.FieldError {
	var out []dErrors.FieldError
	for _, field := range Fields(m) {
		if strings.TrimSpace(form.Value(field)) == "" {
			out = append(out, dErrors.FieldError{Field: field.String(), Message: field.Label() + " is required"})
		}
	}
	if e := strings.TrimSpace(form.Email); e != "" && !email.IsValid(e) {
		out = append(out, dErrors.FieldError{Field: FieldEmail.String(), Message: "Enter a valid email address"})
	}
	if m == ModeSignup && form.ConfirmPassword != "" && form.Password != form.ConfirmPassword {
		out = append(out, dErrors.FieldError{Field: FieldConfirmPassword.String(), Message: "Passwords do not match"})
	}
	return out
}

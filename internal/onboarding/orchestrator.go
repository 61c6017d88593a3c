package onboarding

import (
	"context"
	"log/slog"
	"time"

	"zirrmi/internal/assessment"
	"zirrmi/internal/auth"
	"zirrmi/internal/facility"
	"zirrmi/internal/platform/loop"
	"zirrmi/internal/platform/metrics"
	"zirrmi/internal/verification"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/platform/audit"
	"zirrmi/pkg/requestcontext"
)

// Services bundles the external collaborators the flows call.
type Services struct {
	Auth         auth.Service
	Verification verification.Service
	Assessment   assessment.Service
}

// Orchestrator sequences a visitor from the landing page through sign-in,
// verification and the assessment to the dashboard.
//
// It owns the screen and the authenticated flag. Child flows exist only while
// their screen or modal is showing and report back through completion
// callbacks. The dashboard and the assessment are entered only from those
// callbacks, after authenticated has been set.
//
// Every method must run on the loop that backs the scheduler.
type Orchestrator struct {
	sched    loop.Scheduler
	services Services
	logger   *slog.Logger
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	notifier verification.Notifier
	cooldown time.Duration

	view          View
	authenticated bool
	user          auth.UserData
	logoutPending bool

	authFlow   *auth.Flow
	verifyFlow *verification.Flow
	pending    auth.UserData
	wizard     *assessment.Wizard

	// assessed holds the facilities of the last accepted assessment.
	assessed []facility.Record
	// opCtx carries request values of the last async operation into its completion.
	opCtx context.Context
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(o *Orchestrator) {
		o.auditor = a
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithNotifier forwards focus hints from the verification code entry.
func WithNotifier(n verification.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

func WithCooldown(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.cooldown = d
	}
}

func New(services Services, sched loop.Scheduler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sched:    sched,
		services: services,
		logger:   slog.Default(),
		cooldown: verification.DefaultCooldown,
		view:     ViewLanding,
		opCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) View() View          { return o.view }
func (o *Orchestrator) Authenticated() bool { return o.authenticated }
func (o *Orchestrator) User() auth.UserData { return o.user }

// Child flows are nil while their screen or modal is not showing.
func (o *Orchestrator) AuthFlow() *auth.Flow                 { return o.authFlow }
func (o *Orchestrator) VerificationFlow() *verification.Flow { return o.verifyFlow }
func (o *Orchestrator) Wizard() *assessment.Wizard           { return o.wizard }

// Modal reports the open overlay.
func (o *Orchestrator) Modal() Modal {
	switch {
	case o.authFlow != nil:
		return ModalAuth
	case o.verifyFlow != nil:
		return ModalVerification
	case o.logoutPending:
		return ModalLogoutConfirm
	default:
		return ModalNone
	}
}

// GetStarted sends an authenticated visitor to the assessment and everyone else
// to the signup form.
func (o *Orchestrator) GetStarted() error {
	if o.view != ViewLanding || o.Modal() != ModalNone {
		return invalid("get started is only available on the landing page")
	}
	if o.authenticated {
		o.enterAssessment()
		return nil
	}
	o.openAuth(auth.ModeSignup)
	return nil
}

// OpenAuth opens the auth modal in mode, or switches an open modal to mode.
func (o *Orchestrator) OpenAuth(mode auth.Mode) error {
	if o.authFlow != nil {
		return o.authFlow.SetMode(mode)
	}
	if o.view != ViewLanding || o.authenticated || o.Modal() != ModalNone {
		return invalid("sign in is only available on the landing page")
	}
	o.openAuth(mode)
	return nil
}

func (o *Orchestrator) ToggleAuthMode() error {
	if o.authFlow == nil {
		return invalid("auth modal is not open")
	}
	return o.authFlow.ToggleMode()
}

func (o *Orchestrator) UpdateAuthField(field auth.Field, value string) error {
	if o.authFlow == nil {
		return invalid("auth modal is not open")
	}
	return o.authFlow.Update(field, value)
}

// FillAuth replaces every value in the open auth form.
func (o *Orchestrator) FillAuth(form auth.Form) error {
	if o.authFlow == nil {
		return invalid("auth modal is not open")
	}
	return o.authFlow.Fill(form)
}

func (o *Orchestrator) SubmitAuth(ctx context.Context) error {
	if o.authFlow == nil {
		return invalid("auth modal is not open")
	}
	o.opCtx = context.WithoutCancel(ctx)
	return o.observe("auth", o.authFlow.Submit(ctx))
}

// CloseAuth dismisses the auth modal, abandoning any call in flight.
func (o *Orchestrator) CloseAuth() error {
	if o.authFlow == nil {
		return invalid("auth modal is not open")
	}
	o.authFlow.Close()
	o.authFlow = nil
	return nil
}

func (o *Orchestrator) SelectChannel(ch verification.Channel) error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	return o.verifyFlow.SelectChannel(ch)
}

func (o *Orchestrator) SendCode(ctx context.Context) error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	return o.observe("verification", o.verifyFlow.SendCode(ctx))
}

func (o *Orchestrator) EnterDigit(index int, value string) error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	return o.verifyFlow.EnterDigit(index, value)
}

func (o *Orchestrator) Backspace(index int) error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	return o.verifyFlow.Backspace(index)
}

func (o *Orchestrator) Verify(ctx context.Context) error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	o.opCtx = context.WithoutCancel(ctx)
	return o.observe("verification", o.verifyFlow.Verify(ctx))
}

// CloseVerification dismisses the verification modal. The visitor stays
// unauthenticated on the landing page and the cooldown timer is stopped.
func (o *Orchestrator) CloseVerification() error {
	if o.verifyFlow == nil {
		return invalid("verification modal is not open")
	}
	o.verifyFlow.Close()
	o.verifyFlow = nil
	o.pending = auth.UserData{}
	return nil
}

func (o *Orchestrator) AddFacility() (id.FacilityID, error) {
	if o.wizard == nil {
		return id.FacilityID{}, invalid("assessment is not open")
	}
	return o.wizard.AddFacility()
}

func (o *Orchestrator) RemoveFacility(fid id.FacilityID) (bool, error) {
	if o.wizard == nil {
		return false, invalid("assessment is not open")
	}
	return o.wizard.RemoveFacility(fid), nil
}

func (o *Orchestrator) UpdateFacility(fid id.FacilityID, field facility.Field, value string) (bool, error) {
	if o.wizard == nil {
		return false, invalid("assessment is not open")
	}
	return o.wizard.UpdateFacility(fid, field, value), nil
}

func (o *Orchestrator) NextStep() error {
	if o.wizard == nil {
		return invalid("assessment is not open")
	}
	return o.observe("assessment", o.wizard.Next())
}

func (o *Orchestrator) PreviousStep() error {
	if o.wizard == nil {
		return invalid("assessment is not open")
	}
	return o.wizard.Previous()
}

func (o *Orchestrator) SubmitAssessment(ctx context.Context) error {
	if o.wizard == nil {
		return invalid("assessment is not open")
	}
	ctx = requestcontext.WithUserID(ctx, o.user.UserID)
	o.opCtx = context.WithoutCancel(ctx)
	return o.wizard.Submit(ctx)
}

// Logout asks for confirmation; nothing changes until ConfirmLogout.
func (o *Orchestrator) Logout() error {
	if o.view != ViewDashboard || o.Modal() != ModalNone {
		return invalid("logout is only available on the dashboard")
	}
	o.logoutPending = true
	return nil
}

func (o *Orchestrator) CancelLogout() error {
	if !o.logoutPending {
		return invalid("no logout to cancel")
	}
	o.logoutPending = false
	return nil
}

func (o *Orchestrator) ConfirmLogout(ctx context.Context) error {
	if !o.logoutPending {
		return invalid("logout has not been requested")
	}
	user := o.user
	o.logoutPending = false
	o.authenticated = false
	o.user = auth.UserData{}
	o.assessed = nil
	o.transition(ViewLanding)
	o.audit(ctx, audit.EventLogoutConfirmed, user)
	return nil
}

// Close tears down every child flow so nothing fires after the session ends.
func (o *Orchestrator) Close() {
	if o.authFlow != nil {
		o.authFlow.Close()
		o.authFlow = nil
	}
	if o.verifyFlow != nil {
		o.verifyFlow.Close()
		o.verifyFlow = nil
	}
	if o.wizard != nil {
		o.wizard.Close()
		o.wizard = nil
	}
}

func (o *Orchestrator) openAuth(mode auth.Mode) {
	o.authFlow = auth.New(o.services.Auth, o.sched,
		auth.WithMode(mode),
		auth.WithLogger(o.logger),
		auth.WithOnComplete(o.authSucceeded),
	)
}

func (o *Orchestrator) authSucceeded(res auth.Result) {
	o.authFlow.Close()
	o.authFlow = nil

	if res.Mode == auth.ModeLogin {
		o.authenticated = true
		o.user = res.User
		o.audit(o.opCtx, audit.EventLoginSucceeded, res.User)
		o.transition(ViewDashboard)
		return
	}

	o.audit(o.opCtx, audit.EventSignupSucceeded, res.User)
	o.pending = res.User
	o.verifyFlow = verification.New(o.services.Verification, o.sched,
		verification.Destination{Email: res.User.Email, Phone: res.User.Phone},
		verification.WithLogger(o.logger),
		verification.WithNotifier(o.notifier),
		verification.WithCooldown(o.cooldown),
		verification.WithOnComplete(o.verified),
	)
}

func (o *Orchestrator) verified(verification.Result) {
	o.verifyFlow.Close()
	o.verifyFlow = nil
	o.authenticated = true
	o.user = o.pending
	o.pending = auth.UserData{}
	o.audit(o.opCtx, audit.EventVerificationSucceeded, o.user)
	o.enterAssessment()
}

func (o *Orchestrator) enterAssessment() {
	o.wizard = assessment.New(o.services.Assessment, o.sched,
		assessment.WithLogger(o.logger),
		assessment.WithOnComplete(o.assessmentDone),
	)
	o.transition(ViewAssessment)
}

func (o *Orchestrator) assessmentDone(res assessment.Result) {
	o.wizard.Close()
	o.wizard = nil
	o.assessed = res.Facilities
	if o.metrics != nil {
		o.metrics.AddFacilitiesAssessed(len(res.Facilities))
	}
	o.audit(o.opCtx, audit.EventAssessmentSubmitted, o.user, "facilities", len(res.Facilities))
	o.transition(ViewDashboard)
}

func (o *Orchestrator) transition(to View) {
	from := o.view
	o.view = to
	o.logger.Info("onboarding view changed", "from", from.String(), "to", to.String())
	if o.metrics != nil {
		o.metrics.RecordTransition(from.String(), to.String())
	}
}

func (o *Orchestrator) audit(ctx context.Context, event audit.AuditEvent, user auth.UserData, attrs ...any) {
	audit.Log(ctx, o.logger, o.auditor, audit.Event{
		UserID: user.UserID,
		Email:  user.Email,
		Action: event.String(),
	}, append(attrs, "user_id", user.UserID.String())...)
}

// observe counts validation failures and passes err through.
func (o *Orchestrator) observe(flow string, err error) error {
	if o.metrics != nil && dErrors.HasCode(err, dErrors.CodeValidation) {
		o.metrics.RecordValidationFailure(flow)
	}
	return err
}

func invalid(msg string) error {
	return dErrors.New(dErrors.CodeInvalidState, msg)
}

package assessment

import (
	"context"
	"log/slog"

	"zirrmi/internal/facility"
	"zirrmi/internal/platform/loop"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
)

// Service processes a completed assessment.
type Service interface {
	Submit(ctx context.Context, facilities []facility.Record) error
}

const submitFailedMessage = "We could not process your assessment. Please try again."

// Wizard drives the three-step questionnaire over a shared facility collection.
// All methods must be called from the onboarding loop.
type Wizard struct {
	service    Service
	sched      loop.Scheduler
	logger     *slog.Logger
	onComplete func(Result)

	facilities *facility.Collection
	step       Step
	phase      Phase
	violations []Violation
	failure    string

	// epoch is bumped on Close so a late submit completion can be recognized.
	epoch  uint64
	cancel context.CancelFunc
}

type Option func(*Wizard)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithOnComplete registers the callback fired once a submission is accepted.
func WithOnComplete(fn func(Result)) Option {
	return func(w *Wizard) {
		w.onComplete = fn
	}
}

// WithCollection seeds the wizard with an existing collection.
func WithCollection(c *facility.Collection) Option {
	return func(w *Wizard) {
		if c != nil {
			w.facilities = c
		}
	}
}

func New(service Service, sched loop.Scheduler, opts ...Option) *Wizard {
	w := &Wizard{
		service: service,
		sched:   sched,
		logger:  slog.Default(),
		step:    StepFacilityInfo,
		phase:   PhaseEditing,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.facilities == nil {
		w.facilities = facility.NewCollection()
	}
	return w
}

// Next validates the current step for every facility and advances one step.
// On a validation failure the violations are kept for display and the step
// does not change.
func (w *Wizard) Next() error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.step >= StepAdditionalInfo {
		return dErrors.New(dErrors.CodeInvalidState, "already at the last step")
	}
	if v := validateStep(w.step, w.facilities.Records()); len(v) > 0 {
		w.violations = v
		return dErrors.Validation("please complete the highlighted fields", fieldErrors(v)...)
	}
	w.step++
	w.violations = nil
	return nil
}

// Previous moves back one step without validating.
func (w *Wizard) Previous() error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.step <= StepFacilityInfo {
		return dErrors.New(dErrors.CodeInvalidState, "already at the first step")
	}
	w.step--
	w.violations = nil
	return nil
}

// Submit hands the facilities to the service. The wizard stays in Submitting
// until the call completes; a failure returns it to the last step with the
// reason recorded.
func (w *Wizard) Submit(ctx context.Context) error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.step != StepAdditionalInfo {
		return dErrors.New(dErrors.CodeInvalidState, "submission is only possible from the last step")
	}

	records := w.facilities.Records()
	epoch := w.epoch
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.phase = PhaseSubmitting
	w.failure = ""

	w.sched.Go(callCtx,
		func(ctx context.Context) error { return w.service.Submit(ctx, records) },
		func(err error) { w.finishSubmit(epoch, records, err) },
	)
	return nil
}

func (w *Wizard) finishSubmit(epoch uint64, records []facility.Record, err error) {
	if epoch != w.epoch {
		w.logger.Debug("dropping stale assessment completion", "error", err)
		return
	}
	w.cancel()
	w.cancel = nil
	if err != nil {
		w.phase = PhaseEditing
		w.failure = dErrors.MessageOf(err, submitFailedMessage)
		w.logger.Warn("assessment submission failed", "error", err, "facilities", len(records))
		return
	}
	w.phase = PhaseDone
	w.logger.Info("assessment submitted", "facilities", len(records))
	if w.onComplete != nil {
		w.onComplete(Result{Facilities: records})
	}
}

// AddFacility appends a blank facility. Allowed at any step while editing.
func (w *Wizard) AddFacility() (id.FacilityID, error) {
	if err := w.requireEditing(); err != nil {
		return id.FacilityID{}, err
	}
	return w.facilities.Add(), nil
}

// RemoveFacility drops a facility and any violations reported for it. Removing
// the last facility, an unknown one, or removing while not editing is a no-op.
func (w *Wizard) RemoveFacility(fid id.FacilityID) bool {
	if w.phase != PhaseEditing || !w.facilities.Remove(fid) {
		return false
	}
	w.violations = deleteViolations(w.violations, func(v Violation) bool {
		return v.FacilityID == fid
	})
	return true
}

// UpdateFacility sets one field. Editing a field clears its violation.
func (w *Wizard) UpdateFacility(fid id.FacilityID, field facility.Field, value string) bool {
	if w.phase != PhaseEditing || !w.facilities.Update(fid, field, value) {
		return false
	}
	w.violations = deleteViolations(w.violations, func(v Violation) bool {
		return v.FacilityID == fid && v.Field == field
	})
	return true
}

func (w *Wizard) Step() Step      { return w.step }
func (w *Wizard) Phase() Phase    { return w.phase }
func (w *Wizard) Failure() string { return w.failure }
func (w *Wizard) Count() int      { return w.facilities.Count() }

func (w *Wizard) Facilities() []facility.Record {
	return w.facilities.Records()
}

func (w *Wizard) Violations() []Violation {
	out := make([]Violation, len(w.violations))
	copy(out, w.violations)
	return out
}

// Close discards the wizard. An in-flight submit is cancelled and its
// completion ignored.
func (w *Wizard) Close() {
	w.epoch++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Wizard) requireEditing() error {
	switch w.phase {
	case PhaseSubmitting:
		return dErrors.New(dErrors.CodeInvalidState, "assessment submission in progress")
	case PhaseDone:
		return dErrors.New(dErrors.CodeInvalidState, "assessment already submitted")
	}
	return nil
}

func deleteViolations(vs []Violation, drop func(Violation) bool) []Violation {
	out := vs[:0]
	for _, v := range vs {
		if !drop(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func fieldErrors(vs []Violation) []dErrors.FieldError {
	out := make([]dErrors.FieldError, len(vs))
	for i, v := range vs {
		out[i] = dErrors.FieldError{
			Field:   v.FacilityID.String() + "." + v.Field.String(),
			Message: v.Message,
		}
	}
	return out
}

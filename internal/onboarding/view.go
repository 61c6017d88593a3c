package onboarding

import (
	"zirrmi/internal/assessment"
	"zirrmi/internal/auth"
	"zirrmi/internal/facility"
	"zirrmi/internal/verification"
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
	"zirrmi/pkg/email"
)

// Snapshot is the view-model a renderer needs to draw the current screen.
type Snapshot struct {
	View          View              `json:"view"`
	Modal         Modal             `json:"modal"`
	Authenticated bool              `json:"authenticated"`
	User          *UserView         `json:"user,omitempty"`
	Auth          *AuthView         `json:"auth,omitempty"`
	Verification  *VerificationView `json:"verification,omitempty"`
	Assessment    *AssessmentView   `json:"assessment,omitempty"`
	Dashboard     *DashboardView    `json:"dashboard,omitempty"`
}

type UserView struct {
	ID          id.UserID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CompanyName string    `json:"companyName,omitempty"`
}

// AuthField describes one input. Value stays empty for secrets.
type AuthField struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Value  string `json:"value,omitempty"`
	Secret bool   `json:"secret,omitempty"`
}

type AuthView struct {
	Mode       auth.Mode            `json:"mode"`
	Status     auth.Status          `json:"status"`
	Fields     []AuthField          `json:"fields"`
	Violations []dErrors.FieldError `json:"violations,omitempty"`
	Failure    string               `json:"failure,omitempty"`
	CanSubmit  bool                 `json:"canSubmit"`
}

type VerificationView struct {
	Channel         verification.Channel `json:"channel"`
	Status          verification.Status  `json:"status"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	Code            []string             `json:"code"`
	CooldownSeconds int                  `json:"cooldownSeconds"`
	CanSend         bool                 `json:"canSend"`
	CanVerify       bool                 `json:"canVerify"`
	Failure         string               `json:"failure,omitempty"`
}

type AssessmentView struct {
	Step       assessment.Step        `json:"step"`
	StepNumber int                    `json:"stepNumber"`
	StepCount  int                    `json:"stepCount"`
	Progress   int                    `json:"progress"`
	Phase      assessment.Phase       `json:"phase"`
	Fields     []assessment.FieldSpec `json:"fields"`
	Facilities []facility.Record      `json:"facilities"`
	Violations []assessment.Violation `json:"violations,omitempty"`
	Failure    string                 `json:"failure,omitempty"`
	CanRemove  bool                   `json:"canRemove"`
	CanGoBack  bool                   `json:"canGoBack"`
	CanSubmit  bool                   `json:"canSubmit"`
}

type DashboardView struct {
	Facilities []facility.Record `json:"facilities"`
}

// Snapshot derives the current view-model. It copies everything it returns.
func (o *Orchestrator) Snapshot() Snapshot {
	s := Snapshot{
		View:          o.view,
		Modal:         o.Modal(),
		Authenticated: o.authenticated,
	}
	if o.authenticated {
		s.User = userView(o.user)
	}
	if o.authFlow != nil {
		s.Auth = authView(o.authFlow)
	}
	if o.verifyFlow != nil {
		s.Verification = verificationView(o.verifyFlow)
	}
	if o.wizard != nil {
		s.Assessment = assessmentView(o.wizard)
	}
	if o.view == ViewDashboard {
		facilities := make([]facility.Record, len(o.assessed))
		copy(facilities, o.assessed)
		s.Dashboard = &DashboardView{Facilities: facilities}
	}
	return s
}

func userView(u auth.UserData) *UserView {
	name := u.FullName
	if name == "" {
		name = email.DisplayName(u.Email)
	}
	return &UserView{ID: u.UserID, Email: u.Email, DisplayName: name, CompanyName: u.CompanyName}
}

func authView(f *auth.Flow) *AuthView {
	form := f.Form()
	fields := make([]AuthField, 0, len(auth.Fields(f.Mode())))
	for _, field := range auth.Fields(f.Mode()) {
		af := AuthField{Name: field.String(), Label: field.Label()}
		if field == auth.FieldPassword || field == auth.FieldConfirmPassword {
			af.Secret = true
		} else {
			af.Value = form.Value(field)
		}
		fields = append(fields, af)
	}
	return &AuthView{
		Mode:       f.Mode(),
		Status:     f.Status(),
		Fields:     fields,
		Violations: f.Violations(),
		Failure:    f.Failure(),
		CanSubmit:  f.Status() == auth.StatusEditing,
	}
}

func verificationView(f *verification.Flow) *VerificationView {
	return &VerificationView{
		Channel:         f.Channel(),
		Status:          f.Status(),
		Email:           f.Destination().Email,
		Phone:           f.Destination().Phone,
		Code:            f.Code().Digits(),
		CooldownSeconds: f.CooldownRemaining(),
		CanSend:         f.CanSend(),
		CanVerify:       f.CanVerify(),
		Failure:         f.Failure(),
	}
}

func assessmentView(w *assessment.Wizard) *AssessmentView {
	editing := w.Phase() == assessment.PhaseEditing
	return &AssessmentView{
		Step:       w.Step(),
		StepNumber: int(w.Step()),
		StepCount:  int(assessment.StepAdditionalInfo),
		Progress:   w.Step().Progress(),
		Phase:      w.Phase(),
		Fields:     assessment.StepFields(w.Step()),
		Facilities: w.Facilities(),
		Violations: w.Violations(),
		Failure:    w.Failure(),
		CanRemove:  editing && w.Count() > 1,
		CanGoBack:  editing && w.Step() > assessment.StepFacilityInfo,
		CanSubmit:  editing && w.Step() == assessment.StepAdditionalInfo,
	}
}

package auth

import (
	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
)

// Mode selects between signing in and creating an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func ParseMode(s string) (Mode, error) {
	switch s {
	case "login":
		return ModeLogin, nil
	case "signup":
		return ModeSignup, nil
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown auth mode: "+s)
}

type Status int

const (
	StatusEditing Status = iota
	StatusSubmitting
	StatusSucceeded
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Field names one input of the auth form.
type Field int

const (
	FieldFullName Field = iota + 1
	FieldPhone
	FieldCompanyName
	FieldEmail
	FieldPassword
	FieldConfirmPassword
)

var fields = []struct {
	field Field
	name  string
	label string
}{
	{FieldFullName, "fullName", "Full name"},
	{FieldPhone, "phone", "Phone number"},
	{FieldCompanyName, "companyName", "Company name"},
	{FieldEmail, "email", "Email"},
	{FieldPassword, "password", "Password"},
	{FieldConfirmPassword, "confirmPassword", "Confirm password"},
}

func (f Field) String() string {
	for _, d := range fields {
		if d.field == f {
			return d.name
		}
	}
	return "unknown"
}

func (f Field) Label() string {
	for _, d := range fields {
		if d.field == f {
			return d.label
		}
	}
	return f.String()
}

func ParseField(s string) (Field, error) {
	for _, d := range fields {
		if d.name == s {
			return d.field, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown auth field: "+s)
}

// requiredFields lists what each mode needs, in display order.
var requiredFields = map[Mode][]Field{
	ModeLogin:  {FieldEmail, FieldPassword},
	ModeSignup: {FieldFullName, FieldPhone, FieldCompanyName, FieldEmail, FieldPassword, FieldConfirmPassword},
}

// Fields lists the inputs shown for a mode.
func Fields(m Mode) []Field {
	return requiredFields[m]
}

// Form holds the values typed into the auth modal. Login uses only email and
// password.
type Form struct {
	FullName        string `json:"fullName,omitempty"`
	Phone           string `json:"phone,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (f Form) Value(field Field) string {
	switch field {
	case FieldFullName:
		return f.FullName
	case FieldPhone:
		return f.Phone
	case FieldCompanyName:
		return f.CompanyName
	case FieldEmail:
		return f.Email
	case FieldPassword:
		return f.Password
	case FieldConfirmPassword:
		return f.ConfirmPassword
	}
	return ""
}

func (f *Form) set(field Field, v string) bool {
	switch field {
	case FieldFullName:
		f.FullName = v
	case FieldPhone:
		f.Phone = v
	case FieldCompanyName:
		f.CompanyName = v
	case FieldEmail:
		f.Email = v
	case FieldPassword:
		f.Password = v
	case FieldConfirmPassword:
		f.ConfirmPassword = v
	default:
		return false
	}
	return true
}

// Credentials is what the auth service receives.
type Credentials struct {
	Mode        Mode
	Email       string
	Password    string
	FullName    string
	Phone       string
	CompanyName string
}

// UserData is returned by a successful authentication. Token is opaque here.
type UserData struct {
	UserID      id.UserID `json:"userId"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	FullName    string    `json:"fullName,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	Token       string    `json:"-"`
}

// Result reports which mode produced the user so the caller can route.
type Result struct {
	Mode Mode
	User UserData
}

package onboarding

// View is the base screen.
type View int

const (
	ViewLanding View = iota
	ViewAssessment
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewAssessment:
		return "assessment"
	case ViewDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

func (v View) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// Modal is the overlay shown above the base screen, if any.
type Modal int

const (
	ModalNone Modal = iota
	ModalAuth
	ModalVerification
	ModalLogoutConfirm
)

func (m Modal) String() string {
	switch m {
	case ModalNone:
		return "none"
	case ModalAuth:
		return "auth"
	case ModalVerification:
		return "verification"
	case ModalLogoutConfirm:
		return "logout_confirm"
	default:
		return "unknown"
	}
}

func (m Modal) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

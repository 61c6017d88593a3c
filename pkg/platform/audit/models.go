package audit

import (
	"time"

	id "zirrmi/pkg/domain"
)

// EventCategory classifies audit events by purpose so sinks can route them.
type EventCategory string

const (
	// CategorySecurity covers authentication and identity verification.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine product activity such as assessments.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the onboarding flows to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Email     string
	Action    string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	EventLoginSucceeded        AuditEvent = "auth_login_succeeded"
	EventSignupSucceeded       AuditEvent = "auth_signup_succeeded"
	EventVerificationSucceeded AuditEvent = "verification_succeeded"
	EventAssessmentSubmitted   AuditEvent = "assessment_submitted"
	EventLogoutConfirmed       AuditEvent = "logout_confirmed"
)

// Category returns the routing category for a known event.
func (e AuditEvent) Category() EventCategory {
	switch e {
	case EventAssessmentSubmitted:
		return CategoryOperations
	default:
		return CategorySecurity
	}
}

func (e AuditEvent) String() string {
	return string(e)
}

package domain

import (
	"github.com/google/uuid"

	dErrors "zirrmi/pkg/domain-errors"
)

// Typed identifiers keep facility, user and submission IDs from being mixed up
// at compile time. All of them are UUIDs under the hood.
type (
	FacilityID   uuid.UUID
	UserID       uuid.UUID
	SubmissionID uuid.UUID
)

func NewFacilityID() FacilityID     { return FacilityID(uuid.New()) }
func NewUserID() UserID             { return UserID(uuid.New()) }
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

func (id FacilityID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }

func (id FacilityID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as plain UUID strings in JSON.
func (id FacilityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func ParseFacilityID(s string) (FacilityID, error) {
	u, err := parseUUID(s, "facility")
	return FacilityID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" ID required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" ID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" ID must not be nil")
	}
	return u, nil
}

package httptransport

import (
	"zirrmi/internal/auth"
	"zirrmi/internal/facility"
	"zirrmi/internal/onboarding"
	"zirrmi/internal/verification"
	dErrors "zirrmi/pkg/domain-errors"
)

// ActionResponse answers every state-changing request with the session as it
// stands after the operation.
type ActionResponse struct {
	FacilityID string              `json:"facilityId,omitempty"`
	Applied    *bool               `json:"applied,omitempty"`
	Session    onboarding.Snapshot `json:"session"`
}

type OpenAuthRequest struct {
	Mode string `json:"mode"`

	mode auth.Mode
}

func (r *OpenAuthRequest) Validate() error {
	mode, err := auth.ParseMode(r.Mode)
	if err != nil {
		return err
	}
	r.mode = mode
	return nil
}

type AuthFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`

	field auth.Field
}

func (r *AuthFieldRequest) Validate() error {
	field, err := auth.ParseField(r.Field)
	if err != nil {
		return err
	}
	r.field = field
	return nil
}

type ChannelRequest struct {
	Channel string `json:"channel"`

	channel verification.Channel
}

func (r *ChannelRequest) Validate() error {
	ch, err := verification.ParseChannel(r.Channel)
	if err != nil {
		return err
	}
	r.channel = ch
	return nil
}

type DigitRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

func (r *DigitRequest) Validate() error {
	if r.Index < 0 || r.Index >= verification.CodeLength {
		return dErrors.New(dErrors.CodeInvalidInput, "index is out of range")
	}
	return nil
}

type BackspaceRequest struct {
	Index int `json:"index"`
}

func (r *BackspaceRequest) Validate() error {
	if r.Index < 0 || r.Index >= verification.CodeLength {
		return dErrors.New(dErrors.CodeInvalidInput, "index is out of range")
	}
	return nil
}

type FacilityFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`

	field facility.Field
}

func (r *FacilityFieldRequest) Validate() error {
	field, err := facility.ParseField(r.Field)
	if err != nil {
		return err
	}
	r.field = field
	return nil
}

package assessment

import (
	"math"

	"zirrmi/internal/facility"
	id "zirrmi/pkg/domain"
)

// Step is one of the three wizard screens.
type Step int

const (
	StepFacilityInfo Step = iota + 1
	StepPowerOps
	StepAdditionalInfo
)

const stepCount = 3

func (s Step) String() string {
	switch s {
	case StepFacilityInfo:
		return "facility_info"
	case StepPowerOps:
		return "power_ops"
	case StepAdditionalInfo:
		return "additional_info"
	default:
		return "unknown"
	}
}

func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Progress is the completion percentage shown for the step.
func (s Step) Progress() int {
	return int(math.Round(float64(s) / stepCount * 100))
}

type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Violation is one field of one facility that blocked navigation.
type Violation struct {
	FacilityID id.FacilityID  `json:"facilityId"`
	Field      facility.Field `json:"field"`
	Message    string         `json:"message"`
}

// FieldSpec describes how a field is presented on a step.
type FieldSpec struct {
	Field    facility.Field `json:"field"`
	Label    string         `json:"label"`
	Required bool           `json:"required"`
	Options  []string       `json:"options,omitempty"`
}

var stepFields = map[Step][]FieldSpec{
	StepFacilityInfo: {
		fieldSpec(facility.FieldName, true),
		fieldSpec(facility.FieldLocation, true),
		fieldSpec(facility.FieldIndustry, false),
		fieldSpec(facility.FieldEmployeeCount, true),
	},
	StepPowerOps: {
		fieldSpec(facility.FieldPowerConsumptionKW, true),
		fieldSpec(facility.FieldOperatingSchedule, true),
		fieldSpec(facility.FieldBackupPowerType, true),
		fieldSpec(facility.FieldCriticalEquipment, true),
	},
	StepAdditionalInfo: {
		fieldSpec(facility.FieldNotes, false),
	},
}

func fieldSpec(f facility.Field, required bool) FieldSpec {
	return FieldSpec{Field: f, Label: f.Label(), Required: required, Options: f.Options()}
}

// StepFields lists the fields edited on a step, in display order.
func StepFields(s Step) []FieldSpec {
	return stepFields[s]
}

// Result is handed to the completion callback once the assessment is accepted.
type Result struct {
	Facilities []facility.Record
}

package facility

import (
	"slices"

	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"
)

// Field is the closed set of editable facility attributes.
type Field int

const (
	FieldName Field = iota + 1
	FieldLocation
	FieldIndustry
	FieldEmployeeCount
	FieldPowerConsumptionKW
	FieldCriticalEquipment
	FieldBackupPowerType
	FieldOperatingSchedule
	FieldNotes
)

var fieldNames = map[Field]string{
	FieldName:               "name",
	FieldLocation:           "location",
	FieldIndustry:           "industry",
	FieldEmployeeCount:      "employeeCount",
	FieldPowerConsumptionKW: "powerConsumptionKw",
	FieldCriticalEquipment:  "criticalEquipment",
	FieldBackupPowerType:    "backupPowerType",
	FieldOperatingSchedule:  "operatingSchedule",
	FieldNotes:              "notes",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

var fieldLabels = map[Field]string{
	FieldName:               "Facility name",
	FieldLocation:           "Location",
	FieldIndustry:           "Industry",
	FieldEmployeeCount:      "Number of employees",
	FieldPowerConsumptionKW: "Power consumption (kW)",
	FieldCriticalEquipment:  "Critical equipment",
	FieldBackupPowerType:    "Backup power",
	FieldOperatingSchedule:  "Operating schedule",
	FieldNotes:              "Additional notes",
}

// Label is the human-readable name used in validation messages.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return f.String()
}

// ParseField maps a wire name onto a Field.
func ParseField(s string) (Field, error) {
	for f, name := range fieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown facility field: "+s)
}

// Options returns the allowed values for enumerated fields, nil for free text.
func (f Field) Options() []string {
	switch f {
	case FieldIndustry:
		return Industries
	case FieldOperatingSchedule:
		return OperatingSchedules
	case FieldBackupPowerType:
		return BackupPowerTypes
	default:
		return nil
	}
}

// Numeric reports whether the field holds a quantity.
func (f Field) Numeric() bool {
	return f == FieldEmployeeCount || f == FieldPowerConsumptionKW
}

// Allows reports whether v is acceptable for an enumerated field. Free-text
// fields accept anything.
func (f Field) Allows(v string) bool {
	opts := f.Options()
	return opts == nil || slices.Contains(opts, v)
}

var (
	Industries = []string{
		"automotive", "electronics", "textiles", "food",
		"pharmaceuticals", "chemicals", "metals", "other",
	}
	OperatingSchedules = []string{"8x5", "12x5", "16x5", "24x5", "24x7"}
	BackupPowerTypes   = []string{"none", "ups", "generator", "solar", "hybrid"}
)

// Record is one manufacturing site under assessment. All attributes are kept as
// entered; the wizard decides what is required when.
type Record struct {
	ID                 id.FacilityID `json:"id"`
	Name               string        `json:"name"`
	Location           string        `json:"location"`
	Industry           string        `json:"industry"`
	EmployeeCount      string        `json:"employeeCount"`
	PowerConsumptionKW string        `json:"powerConsumptionKw"`
	CriticalEquipment  string        `json:"criticalEquipment"`
	BackupPowerType    string        `json:"backupPowerType"`
	OperatingSchedule  string        `json:"operatingSchedule"`
	Notes              string        `json:"notes"`
}

// Value reads one field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldLocation:
		return r.Location
	case FieldIndustry:
		return r.Industry
	case FieldEmployeeCount:
		return r.EmployeeCount
	case FieldPowerConsumptionKW:
		return r.PowerConsumptionKW
	case FieldCriticalEquipment:
		return r.CriticalEquipment
	case FieldBackupPowerType:
		return r.BackupPowerType
	case FieldOperatingSchedule:
		return r.OperatingSchedule
	case FieldNotes:
		return r.Notes
	default:
		return ""
	}
}

func (r *Record) set(f Field, v string) bool {
	switch f {
	case FieldName:
		r.Name = v
	case FieldLocation:
		r.Location = v
	case FieldIndustry:
		r.Industry = v
	case FieldEmployeeCount:
		r.EmployeeCount = v
	case FieldPowerConsumptionKW:
		r.PowerConsumptionKW = v
	case FieldCriticalEquipment:
		r.CriticalEquipment = v
	case FieldBackupPowerType:
		r.BackupPowerType = v
	case FieldOperatingSchedule:
		r.OperatingSchedule = v
	case FieldNotes:
		r.Notes = v
	default:
		return false
	}
	return true
}

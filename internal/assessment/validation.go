package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"zirrmi/internal/facility"
)

// validateStep checks the step's fields for every facility. Required fields must
// be non-blank; quantities must be non-negative numbers; enumerated values must
// come from their vocabulary. Blank optional fields are always accepted.
func validateStep(step Step, records []facility.Record) []Violation {
	var out []Violation
	for _, rec := range records {
		for _, fs := range StepFields(step) {
			if msg := checkField(fs, rec.Value(fs.Field)); msg != "" {
				out = append(out, Violation{FacilityID: rec.ID, Field: fs.Field, Message: msg})
			}
		}
	}
	return out
}

func checkField(fs FieldSpec, raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		if fs.Required {
			return fmt.Sprintf("%s is required", fs.Label)
		}
		return ""
	}
	if fs.Field.Numeric() && !nonNegative(fs.Field, v) {
		return fmt.Sprintf("%s must be a non-negative number", fs.Label)
	}
	if !fs.Field.Allows(v) {
		return fmt.Sprintf("%s must be one of %s", fs.Label, strings.Join(fs.Options, ", "))
	}
	return ""
}

// nonNegative accepts whole headcounts and finite, non-negative power figures.
func nonNegative(f facility.Field, v string) bool {
	if f == facility.FieldEmployeeCount {
		_, err := strconv.ParseUint(v, 10, 64)
		return err == nil
	}
	n, err := strconv.ParseFloat(v, 64)
	return err == nil && n >= 0 && !math.IsInf(n, 0) && !math.IsNaN(n)
}

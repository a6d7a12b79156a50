package errors

import (
	"fmt"
	"slices"
	"strings"
)

// MetaValidation holds the per-field messages of a failed validation
const MetaValidation = "validation_errors"

// ValidationBuilder collects field problems from a Config.Validate or request
// check and turns them into one InvalidArgument error.
type ValidationBuilder struct {
	fields map[string][]string
}

func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{fields: map[string][]string{}}
}

// Field records message against field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.fields[field] = append(vb.fields[field], message)
	return vb
}

func (vb *ValidationBuilder) Fieldf(field, format string, args ...any) *ValidationBuilder {
	return vb.Field(field, fmt.Sprintf(format, args...))
}

func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// Build returns nil when nothing was recorded. Fields appear in name order in
// the message so output is stable.
func (vb *ValidationBuilder) Build() error {
	if len(vb.fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(vb.fields))
	for name := range vb.fields {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + strings.Join(vb.fields[name], ", ")
	}

	return InvalidArgument("validation failed: "+strings.Join(parts, "; ")).
		WithMeta(MetaValidation, vb.fields)
}

// ValidateRequired flags a blank string
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

func ValidatePositive(field string, value int, vb *ValidationBuilder) {
	if value <= 0 {
		vb.Fieldf(field, "must be positive, got %d", value)
	}
}

// ValidatePercent flags a chance outside 0..100
func ValidatePercent(field string, value float64, vb *ValidationBuilder) {
	if value < 0 || value > 100 {
		vb.Fieldf(field, "must be between 0 and 100, got %g", value)
	}
}

func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	if !slices.Contains(allowed, value) {
		vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
	}
}

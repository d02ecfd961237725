package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength bounds node display labels, in characters
const MaxNameLength = 200

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("nodename", validateNodeName); err != nil {
		panic(err)
	}
}

// validateNodeName caps a name at MaxNameLength characters
func validateNodeName(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) <= MaxNameLength
}

// NodeRequest is the flat, validatable view of a node definition.
type NodeRequest struct {
	Name       string  `validate:"nodename"`
	Kind       string  `validate:"required,oneof=or and seq threat measure"`
	Frequency  float64 `validate:"gte=0"`
	Capability int     `validate:"min=0,max=6"`
	Difficulty int     `validate:"min=0,max=6"`
	Children   int     `validate:"min=0"`
}

// FieldError describes the first field of a request that failed validation.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value any
}

func (e *FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s: field is required", e.Field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s, got %v", e.Field, e.Param, e.Value)
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s, got %v", e.Field, e.Param, e.Value)
	case "nodename":
		return fmt.Sprintf("%s: must not exceed %d characters", e.Field, MaxNameLength)
	case "oneof":
		return fmt.Sprintf("%s: %v must be one of [%s]", e.Field, e.Value, e.Param)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", e.Field, e.Tag)
	}
}

// ValidateNodeRequest validates a node definition. The returned error is a
// *FieldError for struct-tag violations.
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a FieldError
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Only the first violation is reported
	for _, e := range validationErrs {
		return &FieldError{
			Field: e.Field(),
			Tag:   e.Tag(),
			Param: e.Param(),
			Value: e.Value(),
		}
	}

	return err
}

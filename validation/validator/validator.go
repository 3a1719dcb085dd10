// Package validator wraps go-playground/validator and reports failures as
// a map of JSON field names to readable messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// defaultMessages maps validation tags to message templates; the first %s is the
// field name and the optional second one the tag parameter.
var defaultMessages = map[string]string{
	"required": "%s is required",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"oneof":    "%s must be one of %s",
}

// New creates a validator that names fields after their json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	messages := make(map[string]string, len(defaultMessages))
	for tag, msg := range defaultMessages {
		messages[tag] = msg
	}
	return &Validator{validate: v, messages: messages}
}

// RegisterRule registers a custom tag with its message template.
func (v *Validator) RegisterRule(tag string, fn validator.Func, message string) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("failed to register validation %q: %w", tag, err)
	}
	if message != "" {
		v.messages[tag] = message
	}
	return nil
}

// ValidateStruct validates s and returns field -> message, empty when valid.
func (v *Validator) ValidateStruct(s any) map[string]string {
	fieldErrors := make(map[string]string)

	err := v.validate.Struct(s)
	if err == nil {
		return fieldErrors
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fieldErrors["_"] = err.Error()
		return fieldErrors
	}
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.parseMessage(e.Field(), e)
	}
	return fieldErrors
}

// ValidateVar validates a single value reported under field, returning its
// message or "" when valid.
func (v *Validator) ValidateVar(field string, value any, tag string) string {
	err := v.validate.Var(value, tag)
	if err == nil {
		return ""
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err.Error()
	}
	return v.parseMessage(field, validationErrs[0])
}

// parseMessage constructs a friendly error message based on the validation tag.
func (v *Validator) parseMessage(field string, e validator.FieldError) string {
	if msg, ok := v.messages[e.Tag()]; ok {
		switch strings.Count(msg, "%s") {
		case 1:
			return fmt.Sprintf(msg, field)
		case 2:
			return fmt.Sprintf(msg, field, e.Param())
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}

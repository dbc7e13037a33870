package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ContactForm carries the client-side rules for a contact submission.
type ContactForm struct {
	Name    string `json:"name" validate:"trimmed_required,trimmed_min=2,trimmed_max=50"`
	Email   string `json:"email" validate:"trimmed_required,contact_email"`
	Phone   string `json:"phone" validate:"phone_digits=10"`
	Subject string `json:"subject" validate:"trimmed_required,trimmed_min=5,trimmed_max=100"`
	Message string `json:"message" validate:"trimmed_required,trimmed_min=10,trimmed_max=1000"`
}

// FieldLabels maps json field names to user-facing labels
var FieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"phone":   "Phone number",
	"subject": "Subject",
	"message": "Message",
}

// ValidateContactForm checks every field of the form and returns one message
// per failing field, keyed by json name. An empty map means the form is valid.
func ValidateContactForm(v *validator.Validate, form ContactForm) map[string]string {
	return FormatValidationErrors(v.Struct(form))
}

// FormatValidationErrors converts validator.ValidationErrors to a map of
// field name to user-friendly message.
func FormatValidationErrors(err error) map[string]string {
	messages := make(map[string]string)
	if err == nil {
		return messages
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		messages["_"] = err.Error()
		return messages
	}

	for _, e := range validationErrors {
		if _, seen := messages[e.Field()]; seen {
			continue
		}
		messages[e.Field()] = formatSingleError(e)
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "trimmed_required":
		return fmt.Sprintf("%s is required", label)
	case "trimmed_min", "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "trimmed_max", "max":
		return fmt.Sprintf("%s must be at most %s characters", label, param)
	case "contact_email", "email":
		return "Please enter a valid email address"
	case "phone_digits":
		return fmt.Sprintf("%s must have at least %s digits", label, param)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}

package contactform

import (
	"agency-site-backend/pkg/validation"
)

// Field names a form input. Values match the JSON field names.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldSubject, FieldMessage}

// Draft is the in-progress set of field values.
type Draft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Get returns the value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldSubject:
		return d.Subject
	case FieldMessage:
		return d.Message
	}
	return ""
}

func (d *Draft) set(f Field, value string) bool {
	switch f {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldSubject:
		d.Subject = value
	case FieldMessage:
		d.Message = value
	default:
		return false
	}
	return true
}

func (d Draft) form() validation.ContactForm {
	return validation.ContactForm{
		Name:    d.Name,
		Email:   d.Email,
		Phone:   d.Phone,
		Subject: d.Subject,
		Message: d.Message,
	}
}

// FieldErrors maps a field to its violation message.
type FieldErrors map[Field]string

func (e FieldErrors) clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func fieldErrorsFrom(messages map[string]string) FieldErrors {
	out := make(FieldErrors, len(messages))
	for k, v := range messages {
		out[Field(k)] = v
	}
	return out
}

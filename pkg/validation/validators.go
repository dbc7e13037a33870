package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// notSpaceOrAt matches the ECMAScript whitespace set. RE2's \s is ASCII only.
const notSpaceOrAt = `[^\s\v\p{Z}\x{FEFF}\x{2028}\x{2029}@]`

// EmailPattern is the permissive local@domain.tld check shared by the form
// controller and the HTTP endpoint. It accepts some invalid addresses and
// rejects obviously malformed ones.
var EmailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

// Field limits, counted in code points after trimming.
const (
	NameMinLength    = 2
	NameMaxLength    = 50
	SubjectMinLength = 5
	SubjectMaxLength = 100
	MessageMinLength = 10
	MessageMaxLength = 1000
	PhoneMinDigits   = 10
)

// New returns a validator with the contact-form tags registered and field
// names reported by their json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("trimmed_required", TrimmedRequired)
	_ = v.RegisterValidation("trimmed_min", TrimmedMin)
	_ = v.RegisterValidation("trimmed_max", TrimmedMax)
	_ = v.RegisterValidation("contact_email", ContactEmail)
	_ = v.RegisterValidation("phone_digits", PhoneDigits)
}

// TrimmedRequired fails for empty and whitespace-only strings.
func TrimmedRequired(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// TrimmedMin checks the trimmed length against the tag parameter.
func TrimmedMin(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return TrimmedLength(fl.Field().String()) >= limit
}

// TrimmedMax checks the trimmed length against the tag parameter.
func TrimmedMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return TrimmedLength(fl.Field().String()) <= limit
}

// ContactEmail matches EmailPattern. Empty values pass; pair with a
// required tag when the field is mandatory.
func ContactEmail(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return IsValidEmail(val)
}

// PhoneDigits validates an optional phone number by counting its digits.
// Separators like spaces, dashes and parentheses are ignored.
func PhoneDigits(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return CountDigits(val) >= min
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return EmailPattern.MatchString(s)
}

// TrimmedLength returns the number of code points in s after trimming.
func TrimmedLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// CountDigits counts ASCII digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

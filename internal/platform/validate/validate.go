package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pet-adoption/internal/platform/apierr"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Errors acumula errores por campo; Err() devuelve nil si no hubo ninguno.
type Errors struct {
	fields []apierr.FieldError
}

func (v *Errors) Add(field, msg string) {
	v.fields = append(v.fields, apierr.FieldError{Field: field, Message: msg})
}

func (v *Errors) Required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, msg)
	}
}

func (v *Errors) MaxLen(field, value string, max int, msg string) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, msg)
	}
}

func (v *Errors) MinInt(field string, value, min int, msg string) {
	if value < min {
		v.Add(field, msg)
	}
}

func (v *Errors) MinFloat(field string, value, min float64, msg string) {
	if value < min {
		v.Add(field, msg)
	}
}

func (v *Errors) OneOf(field, value string, allowed []string, msg string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, msg)
}

func (v *Errors) Email(field, value, msg string) {
	if !IsEmail(value) {
		v.Add(field, msg)
	}
}

func (v *Errors) Empty() bool { return len(v.fields) == 0 }

func (v *Errors) Err() error {
	if v.Empty() {
		return nil
	}
	return apierr.Validation(v.fields)
}

func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return false
	}
	return reEmail.MatchString(s)
}

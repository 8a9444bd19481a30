// Package inputval validates form input structs and turns validator errors
// into messages that can be shown next to the form.
//
// Fields are described with `validate:"..."` rules and an optional
// `label:"..."` used in messages:
//
//	type input struct {
//	    JobTitle string `validate:"required,max=200" label:"Job title"`
//	    Email    string `validate:"omitempty,email" label:"Contact email"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    renderFormWithError(res.First())
//	}
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	validator "gopkg.in/go-playground/validator.v9"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Result collects the failures from one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		_ = v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
			return models.IsValidStatus(fl.Field().String())
		})
		_ = v.RegisterValidation("companytype", func(fl validator.FieldLevel) bool {
			return models.IsValidCompanyType(fl.Field().String())
		})
	})
	return v
}

// Validate runs the struct's rules and returns the failures in field order.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return res
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, param)
	case "email":
		return "A valid email address is required."
	case "httpurl":
		return fmt.Sprintf("%s must be a full http:// or https:// address.", label)
	case "appstatus", "companytype", "oneof":
		return fmt.Sprintf("%s is not one of the allowed choices.", label)
	case "eqfield":
		return fmt.Sprintf("%s does not match.", label)
	}
	return fmt.Sprintf("%s is invalid.", label)
}

// IsValidEmail accepts a bare addr-spec ("user@example.com"). Display-name
// forms, spaces and misplaced dots are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	return urlutil.IsValidAbsHTTPURL(strings.TrimSpace(s))
}

package auth

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/event-master/backend/pkg/i18n"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidName reports whether s is a non-empty name of letters, digits, '_' or '-'.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// StrongPassword reports whether s has at least 8 characters including a lowercase letter,
// an uppercase letter and a character outside [A-Za-z0-9_].
func StrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var lower, upper, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9', r == '_':
		default:
			special = true
		}
	}
	return lower && upper && special
}

// Trimmer is implemented by request bodies that strip surrounding whitespace before validation.
type Trimmer interface {
	Trim()
}

type trimmingValidator struct {
	binding.StructValidator
}

func (v trimmingValidator) ValidateStruct(obj any) error {
	if t, ok := obj.(Trimmer); ok {
		t.Trim()
	}
	return v.StructValidator.ValidateStruct(obj)
}

// RegisterValidators adds the eventname and eventpassword rules to gin's validator and
// makes it trim Trimmer bodies first.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if _, wrapped := binding.Validator.(trimmingValidator); !wrapped {
		binding.Validator = trimmingValidator{binding.Validator}
	}
	return registerRules(v)
}

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("eventname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("eventpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

// ValidationMessage maps a binding error to a message id.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return i18n.MsgInvalidForm
	}
	switch verrs[0].Tag() {
	case "eventname":
		return i18n.MsgInvalidName
	case "eventpassword":
		return i18n.MsgWeakPassword
	case "email":
		return i18n.MsgInvalidEmail
	}
	return i18n.MsgInvalidForm
}

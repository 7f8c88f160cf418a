// Package validation wires go-playground/validator with the custom tags used
// by request bodies and translates failures into apperr keys.
package validation

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/ovsidee/UniversityApp/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of enrollment dates.
const DateLayout = "2006-01-02"

// PasswordSpecialChars is the set a password must draw at least one character from.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var phonePattern = regexp.MustCompile(`^[0-9\-+ ]+$`)

// New returns a validator with the phone, password_policy and grade tags registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return ValidGrade(fl.Field().Float())
	})
	return v
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidPassword requires six characters, one uppercase letter and one special character.
func ValidPassword(password string) bool {
	if len([]rune(password)) < 6 {
		return false
	}

	var upper, special bool
	for _, r := range password {
		if unicode.IsUpper(r) {
			upper = true
		}
		if strings.ContainsRune(PasswordSpecialChars, r) {
			special = true
		}
	}
	return upper && special
}

// ValidGrade accepts 2.0 to 5.0 inclusive in steps of 0.5.
func ValidGrade(grade float64) bool {
	if math.IsNaN(grade) || grade < 2 || grade > 5 {
		return false
	}
	return grade*2 == math.Trunc(grade*2)
}

// Struct validates s and maps the first failing field to a client key.
func Struct(v *validator.Validate, s interface{}) error {
	return translate(v.Struct(s))
}

// Var validates a single value against tag.
func Var(v *validator.Validate, field interface{}, tag string) error {
	return translate(v.Var(field, tag))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.ErrInvalidRequest, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Wrap(apperr.ErrRequiredFields, err)
	case "email":
		return apperr.Wrap(apperr.ErrInvalidEmail, err)
	case "phone":
		return apperr.Wrap(apperr.ErrInvalidPhone, err)
	case "password_policy":
		return apperr.Wrap(apperr.ErrPasswordPolicy, err)
	case "grade":
		return apperr.Wrap(apperr.ErrInvalidGrade, err)
	case "datetime":
		return apperr.Wrap(apperr.ErrInvalidDate, err)
	}

	if fe.Field() == "Credits" || fe.Field() == "credits" {
		return apperr.Wrap(apperr.ErrInvalidCredits, err)
	}
	return apperr.Wrap(apperr.ErrInvalidRequest, err)
}

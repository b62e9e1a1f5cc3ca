package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxMessageRunes caps a single chat message body.
const MaxMessageRunes = 4000

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", NotBlank)
	_ = v.RegisterValidation("maxrunes", MaxRunes)
	_ = v.RegisterValidation("swipe", SwipeDirection)
}

// NotBlank rejects strings made only of whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// MaxRunes bounds a string by characters rather than bytes.
func MaxRunes(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) <= MaxMessageRunes
}

func SwipeDirection(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case "LEFT", "RIGHT":
		return true
	}
	return false
}

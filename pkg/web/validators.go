package web

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var accountNumberRe = regexp.MustCompile(`^[0-9]{9}$`)

// ValidAccountNumber validates that the field holds a 9 digit account number.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return accountNumberRe.MatchString(s)
	}

	return false
}

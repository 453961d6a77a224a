// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

type coder interface {
	ErrorCode() string
}

type accountCarrier interface {
	Account() string
}

// Error wraps a given err into json friendly struct.
//
// Structured fields of the error, when it has any, are copied to the response.
func Error(err error) Response {
	res := Response{Error: err.Error()}

	var c coder
	if errors.As(err, &c) {
		res.Code = c.ErrorCode()
	}

	var a accountCarrier
	if errors.As(err, &a) {
		res.AccountNumber = a.Account()
	}

	return res
}

// GetErrorMsg converts the first validation error into a human readable message.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "numeric":
		return fe.Field() + " must contain digits only"
	case "account_number":
		return fe.Field() + " must be a 9 digit account number"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	}

	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// BindingError converts a request binding error into a response.
//
// Validation failures are rendered by GetErrorMsg, anything else (malformed JSON,
// wrong field types) by its own message.
func BindingError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return Response{Error: GetErrorMsg(ve), Code: "invalid_request"}
	}

	return Response{Error: err.Error(), Code: "invalid_request"}
}

package domain

import "errors"

// Kind classifies an Error for the caller.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindNotFound
	KindState
)

var kindNames = [...]string{
	KindInternal:       "internal",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindValidation:     "validation",
	KindConflict:       "conflict",
	KindNotFound:       "not_found",
	KindState:          "state",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Error is a business failure reported to the caller as is.
//
// Two errors match under errors.Is when their codes are equal, so a sentinel
// still matches after WithAccount attached an account number to it.
type Error struct {
	Kind          Kind
	Code          string
	Message       string
	AccountNumber string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the stable machine readable code.
func (e *Error) ErrorCode() string {
	return e.Code
}

// Account returns the account number the failure refers to, if any.
func (e *Error) Account() string {
	return e.AccountNumber
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// WithAccount returns a copy of e referring to the given account number.
func (e *Error) WithAccount(accountNumber string) *Error {
	c := *e
	c.AccountNumber = accountNumber

	return &c
}

// KindOf returns the kind of err, KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Package domain provides definitions of all entities.
package domain

import (
	"time"
)

// Account roles.
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleSuperuser = "superuser"
)

var (
	// ErrUnknownAccount indicates that the account is not found.
	ErrUnknownAccount = newError(KindNotFound, "unknown_account", "account not found")
	// ErrAccountInactive indicates that the account is deactivated.
	ErrAccountInactive = newError(KindState, "account_inactive", "account is not active")
	// ErrInsufficientFunds indicates that the change would make the balance negative.
	ErrInsufficientFunds = newError(KindState, "insufficient_funds", "insufficient funds")
	// ErrDuplicateEmail indicates that the email is already registered.
	ErrDuplicateEmail = newError(KindConflict, "duplicate_email", "email is already registered")
	// ErrDuplicateNationalID indicates that the national ID is already registered.
	ErrDuplicateNationalID = newError(KindConflict, "duplicate_national_id", "national ID is already registered")
	// ErrDuplicateAccountNumber indicates that the generated account number is taken.
	ErrDuplicateAccountNumber = newError(KindConflict, "duplicate_account_number", "account number is already registered")
	// ErrAccountNumberExhausted indicates that no free account number was found within the attempt budget.
	ErrAccountNumberExhausted = newError(KindConflict, "account_number_exhausted", "could not assign a unique account number")
	// ErrPasswordMismatch indicates that password and its confirmation differ.
	ErrPasswordMismatch = newError(KindValidation, "password_mismatch", "passwords do not match")
	// ErrInvalidCredentials indicates a wrong national ID or password.
	ErrInvalidCredentials = newError(KindValidation, "invalid_credentials", "national ID or password is incorrect")
	// ErrForbiddenAccountMismatch indicates that the account does not belong to the caller.
	ErrForbiddenAccountMismatch = newError(KindAuthorization, "forbidden_account_mismatch", "account does not belong to the authenticated user")
	// ErrForbiddenRole indicates that the caller's role does not allow the operation.
	ErrForbiddenRole = newError(KindAuthorization, "forbidden_role", "role is not allowed to perform this operation")
)

// Account holds a user's profile, credentials and balance.
//
// Balance is a count of the smallest currency unit and is never negative.
type Account struct {
	ID             int64     `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	NationalID     string    `json:"dni"`
	HashedPassword string    `json:"-"`
	AccountNumber  string    `json:"account_number"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	Balance        int64     `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateAccountParams is the input data to register an account.
type CreateAccountParams struct {
	FullName       string
	Email          string
	NationalID     string
	HashedPassword string
	AccountNumber  string
	Role           string
	IsActive       bool
	Balance        int64
}

// AccountView is Account data excluding credentials and balance.
type AccountView struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	NationalID    string    `json:"dni"`
	AccountNumber string    `json:"numero_cuenta"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// View returns the account without sensitive data.
func (a Account) View() AccountView {
	return AccountView{
		ID:            a.ID,
		FullName:      a.FullName,
		Email:         a.Email,
		NationalID:    a.NationalID,
		AccountNumber: a.AccountNumber,
		Role:          a.Role,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

// IsPrivileged reports whether role may administer other accounts.
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleSuperuser
}

// RegisterParams is the registration form as submitted by a new user.
type RegisterParams struct {
	FullName        string
	Email           string
	NationalID      string
	Password        string
	ConfirmPassword string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token         string    `json:"token"`
	Role          string    `json:"role"`
	AccountNumber string    `json:"numero_cuenta"`
	ExpiresAt     time.Time `json:"expires_at"`
}

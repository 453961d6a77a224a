// Package tokenpkg issues and verifies signed identity tokens.
package tokenpkg

import (
	"fmt"
	"time"
)

// Lifetime is the fixed validity window of an access token.
const Lifetime = 24 * time.Hour

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for the given identity and duration.
	CreateToken(identity Identity, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the Maker implementation selected by tokenType.
func NewMaker(tokenType, symmetricKey string) (Maker, error) {
	switch tokenType {
	case TypePaseto:
		return NewPasetoMaker(symmetricKey)
	case TypeJWT:
		return NewJWTMaker(symmetricKey)
	}

	return nil, fmt.Errorf("unsupported token type %q", tokenType)
}

// Issue creates a token valid for Lifetime.
func Issue(m Maker, identity Identity) (string, *Payload, error) {
	return m.CreateToken(identity, Lifetime)
}

package tokenpkg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Identity is the subject a token is issued for.
type Identity struct {
	UserID        int64
	NationalID    string
	AccountNumber string
	Role          string
}

// Payload contains the payload data of the token.
type Payload struct {
	ID            uuid.UUID `json:"id"`
	UserID        int64     `json:"user_id"`
	NationalID    string    `json:"dni"`
	AccountNumber string    `json:"account_number"`
	Role          string    `json:"role"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload for the given identity and duration.
func NewPayload(identity Identity, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	payload := &Payload{
		ID:            tokenID,
		UserID:        identity.UserID,
		NationalID:    identity.NationalID,
		AccountNumber: identity.AccountNumber,
		Role:          identity.Role,
		IssuedAt:      now,
		ExpiredAt:     now.Add(duration),
	}

	return payload, nil
}

// Valid checks if the token payload is valid or not.
func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}

// Identity returns the subject the payload was issued for.
func (p *Payload) Identity() Identity {
	return Identity{
		UserID:        p.UserID,
		NationalID:    p.NationalID,
		AccountNumber: p.AccountNumber,
		Role:          p.Role,
	}
}

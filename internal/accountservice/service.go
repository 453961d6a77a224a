// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	SetActive(ctx context.Context, accountNumber string, active bool) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Get returns the account with the given number.
func (s *Service) Get(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, accountNumber)
}

// SetStatus activates or deactivates the account on behalf of a caller with actorRole.
func (s *Service) SetStatus(ctx context.Context, actorRole, accountNumber string, active bool) (domain.AccountView, error) {
	l := zerolog.Ctx(ctx)

	if !domain.IsPrivileged(actorRole) {
		l.Info().Str("role", actorRole).Msg("status change by unprivileged role")
		return domain.AccountView{}, domain.ErrForbiddenRole
	}

	account, err := s.repo.SetActive(ctx, accountNumber, active)
	if err != nil {
		return domain.AccountView{}, err
	}

	l.Info().
		Str("account_number", accountNumber).
		Bool("active", active).
		Msg("account status changed")

	return account.View(), nil
}

// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"
	"github.com/go-petr/p2p-bank/pkg/passpkg"
	"github.com/go-petr/p2p-bank/pkg/randompkg"
	"github.com/go-petr/p2p-bank/pkg/tokenpkg"
)

// MaxAccountNumberAttempts bounds how many account numbers registration tries.
const MaxAccountNumberAttempts = 10

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetByNationalID(ctx context.Context, nationalID string) (domain.Account, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo             Repo
	tokenMaker       tokenpkg.Maker
	newAccountNumber func() string
}

// New return user service struct to manage user bussines logic.
func New(ur Repo, tm tokenpkg.Maker) *Service {
	return &Service{
		repo:             ur,
		tokenMaker:       tm,
		newAccountNumber: randompkg.AccountNumber,
	}
}

// Register creates an active user account with a zero balance and a fresh account number.
func (s *Service) Register(ctx context.Context, arg domain.RegisterParams) (domain.AccountView, error) {
	l := zerolog.Ctx(ctx)

	var result domain.AccountView

	if arg.Password != arg.ConfirmPassword {
		l.Info().Err(domain.ErrPasswordMismatch).Send()
		return result, domain.ErrPasswordMismatch
	}

	hashedPassword, err := passpkg.Hash(arg.Password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	params := domain.CreateAccountParams{
		FullName:       arg.FullName,
		Email:          arg.Email,
		NationalID:     arg.NationalID,
		HashedPassword: hashedPassword,
		Role:           domain.RoleUser,
		IsActive:       true,
		Balance:        0,
	}

	for attempt := 1; attempt <= MaxAccountNumberAttempts; attempt++ {
		params.AccountNumber = s.newAccountNumber()

		account, err := s.repo.Create(ctx, params)
		if err == nil {
			l.Info().Int64("id", account.ID).Str("account_number", account.AccountNumber).Msg("account registered")
			return account.View(), nil
		}

		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return result, err
		}

		l.Warn().Int("attempt", attempt).Str("account_number", params.AccountNumber).Msg("account number taken")
	}

	l.Error().Err(domain.ErrAccountNumberExhausted).Send()

	return result, domain.ErrAccountNumberExhausted
}

// Login checks the credentials and issues an access token for the account.
//
// An unknown national ID and a wrong password are reported the same way.
func (s *Service) Login(ctx context.Context, nationalID, password string) (domain.LoginResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.LoginResult

	account, err := s.repo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownAccount) {
			l.Info().Err(err).Send()
			return result, domain.ErrInvalidCredentials
		}

		return result, err
	}

	if err := passpkg.Check(password, account.HashedPassword); err != nil {
		l.Info().Err(err).Int64("id", account.ID).Send()
		return result, domain.ErrInvalidCredentials
	}

	identity := tokenpkg.Identity{
		UserID:        account.ID,
		NationalID:    account.NationalID,
		AccountNumber: account.AccountNumber,
		Role:          account.Role,
	}

	token, payload, err := tokenpkg.Issue(s.tokenMaker, identity)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	result = domain.LoginResult{
		Token:         token,
		Role:          account.Role,
		AccountNumber: account.AccountNumber,
		ExpiresAt:     payload.ExpiredAt,
	}

	return result, nil
}

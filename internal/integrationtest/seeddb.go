package integrationtest

import (
	"context"
	"testing"

	"github.com/go-petr/p2p-bank/internal/accountrepo"
	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/pkg/dbpkg"
	"github.com/go-petr/p2p-bank/pkg/passpkg"
	"github.com/go-petr/p2p-bank/pkg/randompkg"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "secret-password"

// RandomAccountParams returns registration data with random unique fields.
func RandomAccountParams(t *testing.T) domain.CreateAccountParams {
	t.Helper()

	hashedPassword, err := passpkg.Hash(SeedPassword)
	if err != nil {
		t.Fatalf("passpkg.Hash(%q) returned error: %v", SeedPassword, err)
	}

	return domain.CreateAccountParams{
		FullName:       randompkg.FullName(),
		Email:          randompkg.Email(),
		NationalID:     randompkg.NationalID(),
		HashedPassword: hashedPassword,
		AccountNumber:  randompkg.AccountNumber(),
		Role:           domain.RoleUser,
		IsActive:       true,
	}
}

// SeedAccountWith creates an account from arg.
func SeedAccountWith(t *testing.T, db dbpkg.SQLInterface, arg domain.CreateAccountParams) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(db)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccount creates an active user account with the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, balance int64) domain.Account {
	t.Helper()

	arg := RandomAccountParams(t)
	arg.Balance = balance

	return SeedAccountWith(t, db, arg)
}

// SeedInactiveAccount creates a deactivated user account with the given balance.
func SeedInactiveAccount(t *testing.T, db dbpkg.SQLInterface, balance int64) domain.Account {
	t.Helper()

	arg := RandomAccountParams(t)
	arg.Balance = balance
	arg.IsActive = false

	return SeedAccountWith(t, db, arg)
}

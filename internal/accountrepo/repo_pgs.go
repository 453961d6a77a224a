// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/pkg/dbpkg"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
//
// db may be a *sql.Tx, in which case every query joins that transaction.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `id, full_name, email, national_id, hashed_password, account_number, role, is_active, balance, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.FullName,
		&a.Email,
		&a.NationalID,
		&a.HashedPassword,
		&a.AccountNumber,
		&a.Role,
		&a.IsActive,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO accounts (
    full_name,
    email,
    national_id,
    hashed_password,
    account_number,
    role,
    is_active,
    balance
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
) RETURNING ` + accountColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.FullName,
		arg.Email,
		arg.NationalID,
		arg.HashedPassword,
		arg.AccountNumber,
		arg.Role,
		arg.IsActive,
		arg.Balance,
	)

	a, err := scanAccount(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				switch pqErr.Constraint {
				case "accounts_email_key":
					l.Info().Err(err).Send()
					return a, domain.ErrDuplicateEmail
				case "accounts_national_id_key":
					l.Info().Err(err).Send()
					return a, domain.ErrDuplicateNationalID
				case "accounts_account_number_key":
					l.Info().Err(err).Str("account_number", arg.AccountNumber).Send()
					return a, domain.ErrDuplicateAccountNumber.WithAccount(arg.AccountNumber)
				}
			}
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, accountNumber)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrUnknownAccount.WithAccount(accountNumber)
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNationalIDQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE national_id = $1
`

// GetByNationalID returns the account registered with the given national ID.
//
// It is the credential lookup used by login; the result carries the password hash.
func (r *RepoPGS) GetByNationalID(ctx context.Context, nationalID string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNationalIDQuery, nationalID)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrUnknownAccount
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const lockQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = ANY($1)
ORDER BY account_number
FOR UPDATE
`

// Lock locks the rows of the given accounts until the surrounding transaction ends
// and returns them keyed by account number. Missing accounts are absent from the map.
//
// Rows are locked in account number order, so two transactions locking the same
// pair never wait on each other in a cycle.
func (r *RepoPGS) Lock(ctx context.Context, accountNumbers ...string) (map[string]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, lockQuery, pq.Array(accountNumbers))
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := make(map[string]domain.Account, len(accountNumbers))

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items[a.AccountNumber] = a
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const adjustBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE account_number = $2
RETURNING ` + accountColumns

// AdjustBalance atomically adds delta to the account's balance and returns the changed account.
//
// A change that would leave the balance negative is rejected by the accounts_balance_check
// constraint and reported as domain.ErrInsufficientFunds.
func (r *RepoPGS) AdjustBalance(ctx context.Context, accountNumber string, delta int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, adjustBalanceQuery, delta, accountNumber)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			l.Info().Err(err).Str("account_number", accountNumber).Send()
			return a, domain.ErrUnknownAccount.WithAccount(accountNumber)
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				l.Info().Err(err).Str("account_number", accountNumber).Send()
				return a, domain.ErrInsufficientFunds.WithAccount(accountNumber)
			}
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const setActiveQuery = `
UPDATE accounts
SET is_active = $1
WHERE account_number = $2
RETURNING ` + accountColumns

// SetActive switches the account's active flag and returns the changed account.
func (r *RepoPGS) SetActive(ctx context.Context, accountNumber string, active bool) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setActiveQuery, active, accountNumber)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrUnknownAccount.WithAccount(accountNumber)
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

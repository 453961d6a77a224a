// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/accountrepo"
	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/internal/transferservice"
	"github.com/go-petr/p2p-bank/pkg/dbpkg"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transfer RepoPGS bound to an existing transaction or connection.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transfer RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const transferColumns = `id, sender_user_id, from_account_number, to_account_number, amount, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransfer(row scanner) (domain.Transfer, error) {
	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.SenderUserID,
		&t.FromAccountNumber,
		&t.ToAccountNumber,
		&t.Amount,
		&t.CreatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transfers (sender_user_id, from_account_number, to_account_number, amount)
VALUES
    ($1, $2, $3, $4)
RETURNING ` + transferColumns

// Create creates the transfer record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.SenderUserID,
		arg.FromAccountNumber,
		arg.ToAccountNumber,
		arg.Amount,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transfers_from_account_number_fkey", "transfers_sender_user_id_fkey":
				return t, domain.ErrUnknownSenderAccount.WithAccount(arg.FromAccountNumber)
			case "transfers_to_account_number_fkey":
				return t, domain.ErrUnknownReceiverAccount.WithAccount(arg.ToAccountNumber)
			case "transfers_amount_check":
				return t, domain.ErrNonPositiveAmount
			case "transfers_distinct_accounts_check":
				return t, domain.ErrSelfTransferForbidden.WithAccount(arg.FromAccountNumber)
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listBySenderQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE from_account_number = $1
ORDER BY id
`

// ListBySender returns the transfers sent from the account in insertion order.
func (r *RepoPGS) ListBySender(ctx context.Context, accountNumber string) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listBySenderQuery, accountNumber)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
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

// txRepo exposes the account and transfer statements of one transaction.
type txRepo struct {
	*accountrepo.RepoPGS
	transfers *RepoPGS
}

func (r txRepo) CreateTransfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	return r.transfers.Create(ctx, arg)
}

// ExecTx runs fn within a single database transaction.
//
// The transaction is committed when fn returns nil and rolled back otherwise,
// so either every statement fn issued is visible afterwards or none is.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(transferservice.TxRepo) error) error {
	l := zerolog.Ctx(ctx)

	if r.conn == nil {
		l.Error().Msg("ExecTx called on a repository bound to a transaction")
		return errorspkg.ErrInternal
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	repo := txRepo{
		RepoPGS:   accountrepo.NewRepoPGS(tx),
		transfers: NewTxRepoPGS(tx),
	}

	if err := fn(repo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
)

// TxRepo provides the data access needed inside a single transfer transaction.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type TxRepo interface {
	Lock(ctx context.Context, accountNumbers ...string) (map[string]domain.Account, error)
	AdjustBalance(ctx context.Context, accountNumber string, delta int64) (domain.Account, error)
	CreateTransfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error)
}

// Store runs fn inside one database transaction.
//
// The transaction commits only if fn returns nil and is rolled back otherwise.
type Store interface {
	ExecTx(ctx context.Context, fn func(TxRepo) error) error
}

// Publisher announces committed transfers.
type Publisher interface {
	PublishTransfer(ctx context.Context, t domain.Transfer) error
}

// CacheInvalidator makes later history reads of the given accounts see their latest transfers.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, accountNumbers ...string) error
}

// Service facilitates transfer service layer logic.
type Service struct {
	store     Store
	publisher Publisher
	cache     CacheInvalidator
}

// Option configures optional collaborators of Service.
type Option func(*Service)

// WithPublisher makes the service publish every committed transfer.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithCacheInvalidator makes the service invalidate the sender's cached history after a transfer.
func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New return transfer service struct to manage transfer bussines logic.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Transfer moves arg.Amount from arg.FromAccountNumber to arg.ToAccountNumber.
//
// callerAccountNumber is the account number of the authenticated caller; only its
// owner may send from it. The remaining checks run against rows locked by the
// transaction that then moves the money, so concurrent transfers touching the same
// account are serialized and a checked balance cannot change before it is debited.
func (s *Service) Transfer(ctx context.Context, callerAccountNumber string, arg domain.CreateTransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferResult

	if arg.FromAccountNumber != callerAccountNumber {
		l.Info().
			Str("caller", callerAccountNumber).
			Str("from", arg.FromAccountNumber).
			Msg("transfer from a foreign account")

		return result, domain.ErrForbiddenAccountMismatch.WithAccount(arg.FromAccountNumber)
	}

	var transfer domain.Transfer

	err := s.store.ExecTx(ctx, func(tx TxRepo) error {
		accounts, err := tx.Lock(ctx, arg.FromAccountNumber, arg.ToAccountNumber)
		if err != nil {
			return err
		}

		sender, ok := accounts[arg.FromAccountNumber]
		receiver, receiverFound := accounts[arg.ToAccountNumber]

		if err := check(arg, sender, ok, receiver, receiverFound); err != nil {
			l.Info().Err(err).Interface("transfer", arg).Send()
			return err
		}

		arg.SenderUserID = sender.ID

		if _, err := tx.AdjustBalance(ctx, arg.FromAccountNumber, -arg.Amount); err != nil {
			return err
		}

		if _, err := tx.AdjustBalance(ctx, arg.ToAccountNumber, arg.Amount); err != nil {
			return err
		}

		transfer, err = tx.CreateTransfer(ctx, arg)

		return err
	})
	if err != nil {
		return result, err
	}

	l.Info().
		Int64("transfer_id", transfer.ID).
		Str("from", transfer.FromAccountNumber).
		Str("to", transfer.ToAccountNumber).
		Int64("amount", transfer.Amount).
		Msg("transfer committed")

	s.afterCommit(ctx, transfer)

	result = domain.TransferResult{
		FromAccountNumber: transfer.FromAccountNumber,
		ToAccountNumber:   transfer.ToAccountNumber,
	}

	return result, nil
}

// check validates a transfer against the locked accounts.
// The order of the checks decides which failure the caller sees.
func check(arg domain.CreateTransferParams, sender domain.Account, senderFound bool, receiver domain.Account, receiverFound bool) error {
	switch {
	case !senderFound:
		return domain.ErrUnknownSenderAccount.WithAccount(arg.FromAccountNumber)
	case !sender.IsActive:
		return domain.ErrSenderInactive.WithAccount(arg.FromAccountNumber)
	case sender.Balance < arg.Amount:
		return domain.ErrInsufficientFunds.WithAccount(arg.FromAccountNumber)
	case !receiverFound:
		return domain.ErrUnknownReceiverAccount.WithAccount(arg.ToAccountNumber)
	case !receiver.IsActive:
		return domain.ErrReceiverInactive.WithAccount(arg.ToAccountNumber)
	case arg.FromAccountNumber == arg.ToAccountNumber:
		return domain.ErrSelfTransferForbidden.WithAccount(arg.FromAccountNumber)
	case arg.Amount <= 0:
		return domain.ErrNonPositiveAmount
	}

	return nil
}

// afterCommit runs the side effects of a committed transfer.
// Their failures are logged only: the money has already moved.
func (s *Service) afterCommit(ctx context.Context, t domain.Transfer) {
	l := zerolog.Ctx(ctx)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, t.FromAccountNumber); err != nil {
			l.Warn().Err(err).Str("account_number", t.FromAccountNumber).Msg("history cache invalidation failed")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransfer(ctx, t); err != nil {
			l.Warn().Err(err).Int64("transfer_id", t.ID).Msg("transfer event publish failed")
		}
	}
}

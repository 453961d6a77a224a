// Package historyservice manages business logic layer of the transfer history.
package historyservice

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/go-petr/p2p-bank/internal/domain"
)

// AccountRepo provides account lookups needed by history service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package historyservice
type AccountRepo interface {
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
}

// TransferRepo provides transfer lookups needed by history service layer.
type TransferRepo interface {
	ListBySender(ctx context.Context, accountNumber string) ([]domain.Transfer, error)
}

// Cache stores history per account in generations.
// Get returns nil records and no error on a miss, along with the current
// generation of the account. Invalidate starts a new generation, after which
// records Set under an older one are never returned by Get.
type Cache interface {
	Get(ctx context.Context, accountNumber string) ([]domain.HistoryRecord, int64, error)
	Set(ctx context.Context, accountNumber string, gen int64, records []domain.HistoryRecord) error
	Invalidate(ctx context.Context, accountNumbers ...string) error
}

// Service facilitates history service layer logic.
type Service struct {
	accounts  AccountRepo
	transfers TransferRepo
	cache     Cache
	sf        singleflight.Group
}

// Option configures optional collaborators of Service.
type Option func(*Service)

// WithCache makes the service read history through c.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New returns history service struct to manage history bussines logic.
func New(ar AccountRepo, tr TransferRepo, opts ...Option) *Service {
	s := &Service{
		accounts:  ar,
		transfers: tr,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// History returns the transfers sent from accountNumber in insertion order.
//
// Only the owner of the account, identified by callerAccountNumber, may read it.
func (s *Service) History(ctx context.Context, callerAccountNumber, accountNumber string) ([]domain.HistoryRecord, error) {
	l := zerolog.Ctx(ctx)

	if accountNumber != callerAccountNumber {
		l.Info().
			Str("caller", callerAccountNumber).
			Str("account_number", accountNumber).
			Msg("history of a foreign account")

		return nil, domain.ErrForbiddenAccountMismatch.WithAccount(accountNumber)
	}

	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		return nil, domain.ErrAccountInactive.WithAccount(accountNumber)
	}

	records, err := s.records(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrNoHistoryFound.WithAccount(accountNumber)
	}

	return records, nil
}

// Invalidate makes the next History call of each account see its latest transfers.
func (s *Service) Invalidate(ctx context.Context, accountNumbers ...string) error {
	for _, n := range accountNumbers {
		s.sf.Forget(n)
	}

	if s.cache == nil {
		return nil
	}

	return s.cache.Invalidate(ctx, accountNumbers...)
}

// records serves the cached history or loads it once for all concurrent
// callers of the same account and generation.
func (s *Service) records(ctx context.Context, accountNumber string) ([]domain.HistoryRecord, error) {
	l := zerolog.Ctx(ctx)

	flight, cacheable, gen := accountNumber, false, int64(0)

	if s.cache != nil {
		records, g, err := s.cache.Get(ctx, accountNumber)
		switch {
		case err != nil:
			l.Warn().Err(err).Str("account_number", accountNumber).Msg("history cache read failed")
		case records != nil:
			return records, nil
		default:
			flight = accountNumber + ":" + strconv.FormatInt(g, 10)
			cacheable, gen = true, g
		}
	}

	loadCtx := context.WithoutCancel(ctx)

	v, err, _ := s.sf.Do(flight, func() (interface{}, error) {
		return s.load(loadCtx, accountNumber, cacheable, gen)
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.HistoryRecord), nil
}

func (s *Service) load(ctx context.Context, accountNumber string, cacheable bool, gen int64) ([]domain.HistoryRecord, error) {
	transfers, err := s.transfers.ListBySender(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	records := make([]domain.HistoryRecord, len(transfers))
	for i, t := range transfers {
		records[i] = t.Record()
	}

	if cacheable {
		if err := s.cache.Set(ctx, accountNumber, gen, records); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_number", accountNumber).Msg("history cache write failed")
		}
	}

	return records, nil
}

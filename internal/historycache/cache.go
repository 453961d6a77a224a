// Package historycache caches transfer history in Redis.
//
// Records of an account live under a key carrying the account's generation.
// Invalidate bumps the generation, so records loaded before it land under a
// key no reader looks at anymore and expire on their own.
package historycache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/go-petr/p2p-bank/internal/domain"
)

// KeyPrefix prefixes every key of the cache.
const KeyPrefix = "history:"

// Cache caches history records per account in Redis.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Cache whose entries expire after ttl.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func genKey(accountNumber string) string {
	return KeyPrefix + "gen:" + accountNumber
}

func key(accountNumber string, gen int64) string {
	return KeyPrefix + accountNumber + ":" + strconv.FormatInt(gen, 10)
}

func (c *Cache) generation(ctx context.Context, accountNumber string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(accountNumber)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return gen, err
}

// Get returns cached records of the account, or nil if miss, along with the
// generation the records belong to. The generation must be passed to Set.
func (c *Cache) Get(ctx context.Context, accountNumber string) ([]domain.HistoryRecord, int64, error) {
	gen, err := c.generation(ctx, accountNumber)
	if err != nil {
		return nil, 0, err
	}

	b, err := c.rdb.Get(ctx, key(accountNumber, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}

	if err != nil {
		return nil, 0, err
	}

	records := []domain.HistoryRecord{}
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, 0, err
	}

	return records, gen, nil
}

// Set stores the records of the account under generation gen.
// Records of a generation older than the current one are never read.
func (c *Cache) Set(ctx context.Context, accountNumber string, gen int64, records []domain.HistoryRecord) error {
	if records == nil {
		records = []domain.HistoryRecord{}
	}

	b, err := json.Marshal(records)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key(accountNumber, gen), b, c.ttl).Err()
}

// Invalidate starts a new generation for each of the given accounts.
func (c *Cache) Invalidate(ctx context.Context, accountNumbers ...string) error {
	if len(accountNumbers) == 0 {
		return nil
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, n := range accountNumbers {
			pipe.Incr(ctx, genKey(n))
		}

		return nil
	})

	return err
}

// Package cache holds the Redis-backed cache for the public donation total.
// The cache is optional: without a configured Redis address every lookup is
// a miss and the handlers fall through to the database.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	donationTotalKey = "donations:total"
	donationTotalTTL = 5 * time.Minute
)

type Totals struct {
	rdb *redis.Client
}

func NewTotals(addr string) *Totals {
	if addr == "" {
		return &Totals{}
	}
	return &Totals{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (t *Totals) DonationTotal(ctx context.Context) (decimal.Decimal, bool) {
	if t.rdb == nil {
		return decimal.Zero, false
	}
	val, err := t.rdb.Get(ctx, donationTotalKey).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("donation total cache read failed", "error", err)
		}
		return decimal.Zero, false
	}
	total, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return total, true
}

func (t *Totals) SetDonationTotal(ctx context.Context, total decimal.Decimal) {
	if t.rdb == nil {
		return
	}
	if err := t.rdb.Set(ctx, donationTotalKey, total.StringFixed(2), donationTotalTTL).Err(); err != nil {
		slog.Warn("donation total cache write failed", "error", err)
	}
}

// InvalidateDonationTotal drops the cached total after a donation completes.
func (t *Totals) InvalidateDonationTotal(ctx context.Context) {
	if t.rdb == nil {
		return
	}
	if err := t.rdb.Del(ctx, donationTotalKey).Err(); err != nil {
		slog.Warn("donation total cache invalidation failed", "error", err)
	}
}

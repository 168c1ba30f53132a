package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

var (
	ErrNotFound = errors.New("cache entry not found")
)

// Provider stores raw bytes with a ttl. A zero ttl keeps the entry until evicted.
type Provider interface {
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}

package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

// Forever disables expiration
const Forever time.Duration = -1

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
	// ErrGapTime is returned when no pool serves the command
	ErrGapTime = errors.New("redis: no pool available")
)

// Service is the subset of redis commands the service relies on
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, keys ...string) (int, error)
	// TTL returns the remaining seconds, Forever when the key has no expire
	TTL(context ctx.Ctx, key string) (int, error)
	// Publish sends msg to channel and returns the number of receivers
	Publish(context ctx.Ctx, channel string, msg []byte) (int, error)
	Ping(context ctx.Ctx) error
}

package cache

import (
	"errors"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
)

var (
	ErrNotFound = errors.New("cache entry not found")
)

// Getter loads the value on a cache miss. It must return a pointer of the
// same type as the container passed to GetByFunc.
type Getter func() (interface{}, error)

type Marshaler func(interface{}) ([]byte, error)

type Unmarshaler func([]byte, interface{}) error

// Service caches typed values under a key prefix
type Service interface {
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter Getter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
	// Take reads and removes the entry
	Take(c ctx.Ctx, key string, container interface{}) error
}

type Config struct {
	TTL       time.Duration
	Prefix    string
	Provider  provider.Provider
	Marshal   Marshaler
	Unmarshal Unmarshaler
}

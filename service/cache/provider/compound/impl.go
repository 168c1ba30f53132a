package compound

import (
	"errors"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound chains layers from fastest to slowest. A hit on a slower layer
// backfills the faster ones with the remaining ttl.
func NewCompound(layers ...provider.Provider) provider.Provider {
	return &impl{layers}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	for idx, lyr := range im.layers {
		val, ttl, err := lyr.Get(c, key)
		if errors.Is(err, provider.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, 0, err
		}

		for _, front := range im.layers[:idx] {
			if err := front.Set(c, key, val, ttl); err != nil {
				// the value is still good, the next read will try again
				c.WithFields(log.Fields{"err": err, "key": key}).Warn("backfill failed")
			}
		}
		return val, ttl, nil
	}
	return nil, 0, provider.ErrNotFound
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	// slowest first so a fast layer never outlives the source of truth
	for i := len(im.layers) - 1; i >= 0; i-- {
		if err := im.layers[i].Set(c, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	for i := len(im.layers) - 1; i >= 0; i-- {
		if err := im.layers[i].Del(c, key); err != nil {
			return err
		}
	}
	return nil
}

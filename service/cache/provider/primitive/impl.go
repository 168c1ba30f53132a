package primitive

import (
	"errors"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
)

var (
	metOnce sync.Once
	met     metrics.Service
)

type impl struct {
	name  string
	cache *freecache.Cache
}

// NewPrimitive returns an in-process provider holding at most sizeMB megabytes
func NewPrimitive(name string, sizeMB int) provider.Provider {
	metOnce.Do(func() {
		met = metrics.New("cache")
	})
	return &impl{
		name:  name,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, ttl, err := im.cache.GetWithExpiration([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		met.BumpSum("miss", 1, "layer", im.name)
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("freecache.GetWithExpiration failed")
		return nil, 0, err
	}
	met.BumpSum("hit", 1, "layer", im.name)

	// freecache reports an absolute unix time, zero means no expiration
	if ttl == 0 {
		return val, 0, nil
	}
	return val, time.Until(time.Unix(int64(ttl), 0)), nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	secs := int(ttl.Seconds())
	if ttl > 0 && secs == 0 {
		secs = 1
	}
	if err := im.cache.Set([]byte(key), value, secs); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("freecache.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	im.cache.Del([]byte(key))
	return nil
}

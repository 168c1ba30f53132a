package cache

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
)

type impl struct {
	ttl       time.Duration
	prefix    string
	provider  provider.Provider
	marshal   Marshaler
	unmarshal Unmarshaler
}

func New(cfg Config) Service {
	if cfg.Marshal == nil {
		cfg.Marshal = json.Marshal
	}
	if cfg.Unmarshal == nil {
		cfg.Unmarshal = json.Unmarshal
	}
	return &impl{
		ttl:       cfg.TTL,
		prefix:    cfg.Prefix,
		provider:  cfg.Provider,
		marshal:   cfg.Marshal,
		unmarshal: cfg.Unmarshal,
	}
}

func (im *impl) GetByFunc(c ctx.Ctx, key string, container interface{}, getter Getter) error {
	err := im.Get(c, key, container)
	if err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	val, err := getter()
	if err != nil {
		return err
	}

	if err := im.Set(c, key, val); err != nil {
		// serve the loaded value even if it could not be cached
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("cache fill failed")
	}

	reflect.ValueOf(container).Elem().Set(reflect.ValueOf(val).Elem())
	return nil
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	key = keys.RedisKey(im.prefix, key)

	val, _, err := im.provider.Get(c, key)
	if errors.Is(err, provider.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("provider.Get failed")
		return err
	}

	if err := im.unmarshal(val, container); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("unmarshal failed")
		return err
	}
	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	key = keys.RedisKey(im.prefix, key)

	val, err := im.marshal(value)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("marshal failed")
		return err
	}
	if err := im.provider.Set(c, key, val, im.ttl); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("provider.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	key = keys.RedisKey(im.prefix, key)

	if err := im.provider.Del(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("provider.Del failed")
		return err
	}
	return nil
}

func (im *impl) Take(c ctx.Ctx, key string, container interface{}) error {
	if err := im.Get(c, key, container); err != nil {
		return err
	}
	return im.Del(c, key)
}

package ens

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	goens "github.com/wealdtech/go-ens/v3"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/service/cache"
)

// Backend performs the on-chain lookups
type Backend interface {
	Resolve(name string) (common.Address, error)
	ReverseResolve(address common.Address) (string, error)
}

type goensBackend struct {
	client bind.ContractBackend
}

// NewBackend looks names up through the ens registry contracts
func NewBackend(client bind.ContractBackend) Backend {
	return &goensBackend{client}
}

func (b *goensBackend) Resolve(name string) (common.Address, error) {
	return goens.Resolve(b.client, name)
}

func (b *goensBackend) ReverseResolve(address common.Address) (string, error) {
	return goens.ReverseResolve(b.client, address)
}

type impl struct {
	backend Backend
	cache   cache.Service
}

func New(backend Backend, cache cache.Service) ENS {
	return &impl{
		backend: backend,
		cache:   cache,
	}
}

func (im *impl) Resolve(ctx ctx.Ctx, name string) (domain.Address, error) {
	res := domain.Address("")
	key := keys.RedisKey("resolve", name)
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		addr, err := im.backend.Resolve(name)
		if fmt.Sprint(err) == "unregistered name" {
			val := domain.Address("")
			return &val, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":  err,
				"name": name,
			}).Error("failed to goens.Resolve")
			return nil, err
		}
		val := domain.Address(addr.String()).ToLower()
		return &val, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}

	return res, nil
}

func (im *impl) ReverseResolve(ctx ctx.Ctx, address domain.Address) (string, error) {
	res := ""
	key := keys.RedisKey("reverse-resolve", address.ToLowerStr())
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		name, err := im.backend.ReverseResolve(common.HexToAddress(string(address)))
		if fmt.Sprint(err) == "not a resolver" {
			empty := ""
			return &empty, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"address": address,
			}).Error("failed to goens.ReverseResolve")
			return nil, err
		}
		return &name, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}

	return res, nil
}

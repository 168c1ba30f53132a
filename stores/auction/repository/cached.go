package repository

import (
	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/service/cache"
)

type cachedRepo struct {
	auction.Repo
	cache cache.Service
}

// NewCached serves FindOne from cache. Writes go to repo and drop the entry.
func NewCached(repo auction.Repo, cache cache.Service) auction.Repo {
	return &cachedRepo{repo, cache}
}

func (im *cachedRepo) FindOne(c ctx.Ctx, id domain.AssetId) (*auction.Auction, error) {
	res := &auction.Auction{}
	if err := im.cache.GetByFunc(c, string(id), res, func() (interface{}, error) {
		return im.Repo.FindOne(c, id)
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (im *cachedRepo) Insert(c ctx.Ctx, a *auction.Auction) error {
	im.drop(c, a.AssetId)
	return im.Repo.Insert(c, a)
}

func (im *cachedRepo) Update(c ctx.Ctx, a *auction.Auction) error {
	defer im.drop(c, a.AssetId)
	return im.Repo.Update(c, a)
}

func (im *cachedRepo) Remove(c ctx.Ctx, id domain.AssetId) error {
	defer im.drop(c, id)
	return im.Repo.Remove(c, id)
}

func (im *cachedRepo) drop(c ctx.Ctx, id domain.AssetId) {
	if err := im.cache.Del(c, string(id)); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Warn("cache.Del failed")
	}
}

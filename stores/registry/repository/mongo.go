package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/service/query"
)

type impl struct {
	query query.Mongo
}

func New(q query.Mongo) registry.Repo {
	return &impl{q}
}

func (im *impl) FindOne(ctx ctx.Ctx, id domain.AssetId) (*registry.Asset, error) {
	res := registry.Asset{}
	if err := im.query.FindOne(ctx, domain.TableAssets, bson.M{"_id": id}, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) Insert(ctx ctx.Ctx, a *registry.Asset) error {
	if err := im.query.Insert(ctx, domain.TableAssets, a); errors.Is(err, query.ErrDuplicateKey) {
		return domain.ErrAssetExists
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"asset": a,
		}).Error("failed to query.Insert")
		return err
	}
	return nil
}

func (im *impl) Update(ctx ctx.Ctx, a *registry.Asset) error {
	update := bson.M{
		"owner":           a.Owner.ToLower(),
		"approved":        a.Approved.ToLower(),
		"royaltyReceiver": a.RoyaltyReceiver.ToLower(),
		"royaltyBps":      a.RoyaltyBps,
		"updatedAt":       a.UpdatedAt,
	}
	if err := im.query.Patch(ctx, domain.TableAssets, bson.M{"_id": a.Id}, update); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"asset": a,
		}).Error("failed to query.Patch")
		return err
	}
	return nil
}

func (im *impl) Count(ctx ctx.Ctx) (int64, error) {
	n, err := im.query.Count(ctx, domain.TableAssets, bson.M{})
	if err != nil {
		ctx.WithField("err", err).Error("failed to query.Count")
		return 0, err
	}
	return int64(n), nil
}

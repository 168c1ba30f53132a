package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/service/query"
)

type impl struct {
	query query.Mongo
}

func New(c ctx.Ctx, q query.Mongo) (royalty.Repo, error) {
	if err := q.EnsureIndexes(c, domain.TableSplitters, query.Index{Keys: []string{"createdAt"}}); err != nil {
		c.WithField("err", err).Error("query.EnsureIndexes failed")
		return nil, err
	}
	return &impl{q}, nil
}

func (im *impl) FindOne(ctx ctx.Ctx, addr domain.Address) (*royalty.Record, error) {
	res := royalty.Record{}
	if err := im.query.FindOne(ctx, domain.TableSplitters, bson.M{"_id": addr.ToLower()}, &res); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": addr,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return &res, nil
}

func (im *impl) FindAll(ctx ctx.Ctx) ([]royalty.Record, error) {
	res := []royalty.Record{}
	if err := im.query.Search(ctx, domain.TableSplitters, 0, 0, "createdAt", bson.M{}, &res); err != nil {
		ctx.WithField("err", err).Error("failed to query.Search")
		return nil, err
	}
	return res, nil
}

func (im *impl) Upsert(ctx ctx.Ctx, r *royalty.Record) error {
	rec := *r
	rec.Address = rec.Address.ToLower()
	rec.PayeeA = rec.PayeeA.ToLower()
	rec.PayeeB = rec.PayeeB.ToLower()
	if err := im.query.Upsert(ctx, domain.TableSplitters, bson.M{"_id": rec.Address}, rec); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"record": rec,
		}).Error("failed to query.Upsert")
		return err
	}
	return nil
}

func (im *impl) Count(ctx ctx.Ctx) (int64, error) {
	n, err := im.query.Count(ctx, domain.TableSplitters, bson.M{})
	if err != nil {
		ctx.WithField("err", err).Error("failed to query.Count")
		return 0, err
	}
	return int64(n), nil
}

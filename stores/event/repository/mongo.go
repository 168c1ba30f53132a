package repository

import (
	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/service/query"
)

type mongoRepo struct {
	query query.Mongo
}

// New journals events into mongo
func New(c ctx.Ctx, q query.Mongo) (domain.EventRepo, error) {
	indexes := []query.Index{
		{Keys: []string{"name", "time"}},
		{Keys: []string{"emitter", "time"}},
		{Keys: []string{"time"}},
	}
	if err := q.EnsureIndexes(c, domain.TableEvents, indexes...); err != nil {
		c.WithField("err", err).Error("query.EnsureIndexes failed")
		return nil, err
	}
	return &mongoRepo{q}, nil
}

func (im *mongoRepo) Emit(ctx ctx.Ctx, event domain.Event) error {
	if err := im.query.Insert(ctx, domain.TableEvents, event); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"event": event,
		}).Error("failed to query.Insert")
		return err
	}
	return nil
}

func (im *mongoRepo) FindAll(ctx ctx.Ctx, optFns ...domain.EventFindAllOptionsFunc) ([]domain.Event, error) {
	opts, err := domain.GetEventFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to GetEventFindAllOptions")
		return nil, err
	}

	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"opts": opts,
		}).Error("failed to make bson")
		return nil, err
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []domain.Event{}
	if err := im.query.Search(ctx, domain.TableEvents, offset, limit, "time", qry, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to query.Search")
		return nil, err
	}
	return res, nil
}

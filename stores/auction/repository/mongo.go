package repository

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/service/query"
)

// auctionDoc stores amounts as decimal strings
type auctionDoc struct {
	AssetId       domain.AssetId `bson:"_id"`
	Seller        domain.Address `bson:"seller"`
	StartingPrice string         `bson:"startingPrice"`
	EndingPrice   string         `bson:"endingPrice"`
	Duration      int64          `bson:"duration"`
	CreatedAt     time.Time      `bson:"createdAt"`
	LastBidTime   time.Time      `bson:"lastBidTime"`
	LastBidAmount string         `bson:"lastBidAmount"`
	LastBidder    domain.Address `bson:"lastBidder"`
}

func toDoc(a *auction.Auction) *auctionDoc {
	return &auctionDoc{
		AssetId:       a.AssetId,
		Seller:        a.Seller.ToLower(),
		StartingPrice: domain.CopyAmount(a.StartingPrice).String(),
		EndingPrice:   domain.CopyAmount(a.EndingPrice).String(),
		Duration:      int64(a.Duration),
		CreatedAt:     a.CreatedAt,
		LastBidTime:   a.LastBidTime,
		LastBidAmount: domain.CopyAmount(a.LastBidAmount).String(),
		LastBidder:    a.LastBidder.ToLower(),
	}
}

func (d *auctionDoc) toAuction() (*auction.Auction, error) {
	startingPrice, err := domain.ParseAmount(d.StartingPrice)
	if err != nil {
		return nil, err
	}
	endingPrice, err := domain.ParseAmount(d.EndingPrice)
	if err != nil {
		return nil, err
	}
	lastBidAmount, err := domain.ParseAmount(d.LastBidAmount)
	if err != nil {
		return nil, err
	}
	return &auction.Auction{
		AssetId:       d.AssetId,
		Seller:        d.Seller,
		StartingPrice: startingPrice,
		EndingPrice:   endingPrice,
		Duration:      time.Duration(d.Duration),
		CreatedAt:     d.CreatedAt,
		LastBidTime:   d.LastBidTime,
		LastBidAmount: lastBidAmount,
		LastBidder:    d.LastBidder,
	}, nil
}

type impl struct {
	query query.Mongo
}

func New(c ctx.Ctx, q query.Mongo) (auction.Repo, error) {
	if err := q.EnsureIndexes(c, domain.TableAuctions,
		query.Index{Keys: []string{"seller", "createdAt"}},
		query.Index{Keys: []string{"lastBidder", "createdAt"}},
		query.Index{Keys: []string{"createdAt"}},
	); err != nil {
		c.WithField("err", err).Error("query.EnsureIndexes failed")
		return nil, err
	}
	return &impl{q}, nil
}

func (im *impl) FindOne(ctx ctx.Ctx, id domain.AssetId) (*auction.Auction, error) {
	doc := auctionDoc{}
	if err := im.query.FindOne(ctx, domain.TableAuctions, bson.M{"_id": id}, &doc); errors.Is(err, query.ErrNotFound) {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return doc.toAuction()
}

func (im *impl) FindAll(ctx ctx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]auction.Auction, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		ctx.WithField("err", err).Error("failed to auction.GetFindAllOptions")
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
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	docs := []auctionDoc{}
	if err := im.query.Search(ctx, domain.TableAuctions, offset, limit, "createdAt", qry, &docs); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to query.Search")
		return nil, err
	}

	res := make([]auction.Auction, 0, len(docs))
	for _, d := range docs {
		a, err := d.toAuction()
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "id": d.AssetId}).Error("bad auction document")
			return nil, err
		}
		res = append(res, *a)
	}
	return res, nil
}

func (im *impl) Insert(ctx ctx.Ctx, a *auction.Auction) error {
	if err := im.query.Insert(ctx, domain.TableAuctions, toDoc(a)); errors.Is(err, query.ErrDuplicateKey) {
		return domain.ErrAuctionAlreadyRunning
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  a.AssetId,
		}).Error("failed to query.Insert")
		return err
	}
	return nil
}

func (im *impl) Update(ctx ctx.Ctx, a *auction.Auction) error {
	doc := toDoc(a)
	update := bson.M{
		"lastBidTime":   doc.LastBidTime,
		"lastBidAmount": doc.LastBidAmount,
		"lastBidder":    doc.LastBidder,
	}
	if err := im.query.Patch(ctx, domain.TableAuctions, bson.M{"_id": a.AssetId}, update); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  a.AssetId,
		}).Error("failed to query.Patch")
		return err
	}
	return nil
}

func (im *impl) Remove(ctx ctx.Ctx, id domain.AssetId) error {
	if err := im.query.Remove(ctx, domain.TableAuctions, bson.M{"_id": id}); errors.Is(err, query.ErrNotFound) {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to query.Remove")
		return err
	}
	return nil
}

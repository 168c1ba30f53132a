package repository

import (
	"errors"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/service/query"
)

type impl struct {
	query query.Mongo
}

// New keeps one document per (holder, payee) in mongo
func New(c ctx.Ctx, q query.Mongo) (ledger.Repo, error) {
	if err := q.EnsureIndexes(c, domain.TablePendingEntries, query.Index{Keys: []string{"holder", "payee"}, Unique: true}); err != nil {
		c.WithField("err", err).Error("query.EnsureIndexes failed")
		return nil, err
	}
	return &impl{q}, nil
}

func selector(holder, payee domain.Address) bson.M {
	return bson.M{"holder": holder.ToLower(), "payee": payee.ToLower()}
}

func (im *impl) Get(ctx ctx.Ctx, holder, payee domain.Address) (*big.Int, error) {
	res := ledger.Entry{}
	err := im.query.FindOne(ctx, domain.TablePendingEntries, selector(holder, payee), &res)
	if errors.Is(err, query.ErrNotFound) {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"holder": holder,
			"payee":  payee,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return domain.ParseAmount(res.Amount)
}

func (im *impl) set(ctx ctx.Ctx, holder, payee domain.Address, amount *big.Int) error {
	entry := ledger.Entry{
		Holder:    holder.ToLower(),
		Payee:     payee.ToLower(),
		Amount:    amount.String(),
		UpdatedAt: time.Now(),
	}
	if err := im.query.Upsert(ctx, domain.TablePendingEntries, selector(holder, payee), entry); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"entry": entry,
		}).Error("failed to query.Upsert")
		return err
	}
	return nil
}

func (im *impl) Add(c ctx.Ctx, holder, payee domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	return im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		cur, err := im.Get(c, holder, payee)
		if err != nil {
			return err
		}
		return im.set(c, holder, payee, cur.Add(cur, amount))
	})
}

func (im *impl) Take(c ctx.Ctx, holder, payee domain.Address) (*big.Int, error) {
	res := new(big.Int)
	err := im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		cur, err := im.Get(c, holder, payee)
		if err != nil {
			return err
		}
		if cur.Sign() == 0 {
			return nil
		}
		res = cur
		return im.set(c, holder, payee, new(big.Int))
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAll(ctx ctx.Ctx, holder domain.Address) ([]ledger.Entry, error) {
	q := bson.M{"holder": holder.ToLower(), "amount": bson.M{"$ne": "0"}}
	res := []ledger.Entry{}
	if err := im.query.Search(ctx, domain.TablePendingEntries, 0, 0, "payee", q, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": q,
		}).Error("failed to query.Search")
		return nil, err
	}
	return res, nil
}

func (im *impl) Total(ctx ctx.Ctx, holder domain.Address) (*big.Int, error) {
	entries, err := im.FindAll(ctx, holder)
	if err != nil {
		return nil, err
	}
	res := new(big.Int)
	for _, e := range entries {
		v, err := domain.ParseAmount(e.Amount)
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "entry": e}).Error("domain.ParseAmount failed")
			return nil, err
		}
		res.Add(res, v)
	}
	return res, nil
}

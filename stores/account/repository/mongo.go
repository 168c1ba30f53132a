package repository

import (
	"errors"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
	"github.com/x-xyz/auctionhouse/service/query"
)

type impl struct {
	query query.Mongo
}

// New stores balances in mongo as decimal strings, updates run in a transaction
func New(query query.Mongo) account.Repo {
	return &impl{query}
}

func (im *impl) Balance(ctx ctx.Ctx, addr domain.Address) (*big.Int, error) {
	res := account.Balance{}
	err := im.query.FindOne(ctx, domain.TableAccounts, bson.M{"_id": addr.ToLower()}, &res)
	if errors.Is(err, query.ErrNotFound) {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": addr,
		}).Error("failed to query.FindOne")
		return nil, err
	}
	return domain.ParseAmount(res.Amount)
}

func (im *impl) Credit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	return im.update(ctx, addr, func(cur *big.Int) (*big.Int, error) {
		return cur.Add(cur, amount), nil
	})
}

func (im *impl) Debit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	return im.update(ctx, addr, func(cur *big.Int) (*big.Int, error) {
		if cur.Cmp(amount) < 0 {
			return nil, domain.ErrInsufficientBalance
		}
		return cur.Sub(cur, amount), nil
	})
}

func (im *impl) update(c ctx.Ctx, addr domain.Address, fn func(cur *big.Int) (*big.Int, error)) error {
	addr = addr.ToLower()
	return im.query.RunWithTransaction(c, func(c ctx.Ctx) error {
		cur, err := im.Balance(c, addr)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		doc := account.Balance{
			Address:   addr,
			Amount:    next.String(),
			UpdatedAt: time.Now(),
		}
		if err := im.query.Upsert(c, domain.TableAccounts, bson.M{"_id": addr}, doc); err != nil {
			c.WithFields(log.Fields{
				"err":     err,
				"address": addr,
			}).Error("failed to query.Upsert")
			return err
		}
		return nil
	})
}

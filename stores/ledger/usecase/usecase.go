package usecase

import (
	"math/big"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/ledger"
)

type Config struct {
	Holder domain.Address
	Repo   ledger.Repo
	Sender domain.Sender
	Access access.Control
}

type impl struct {
	holder domain.Address
	repo   ledger.Repo
	sender domain.Sender
	access access.Control
}

// New returns the pending ledger of cfg.Holder
func New(cfg *Config) ledger.Ledger {
	return &impl{
		holder: cfg.Holder.ToLower(),
		repo:   cfg.Repo,
		sender: cfg.Sender,
		access: cfg.Access,
	}
}

func (im *impl) Holder() domain.Address {
	return im.holder
}

func (im *impl) Credit(c ctx.Ctx, payee domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := im.repo.Add(c, im.holder, payee, amount); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"holder": im.holder,
			"payee":  payee,
			"amount": amount.String(),
		}).Error("repo.Add failed")
		return err
	}
	return nil
}

func (im *impl) BalanceOf(c ctx.Ctx, payee domain.Address) (*big.Int, error) {
	return im.repo.Get(c, im.holder, payee)
}

func (im *impl) Total(c ctx.Ctx) (*big.Int, error) {
	return im.repo.Total(c, im.holder)
}

func (im *impl) Entries(c ctx.Ctx) ([]ledger.Entry, error) {
	return im.repo.FindAll(c, im.holder)
}

func (im *impl) Withdraw(c ctx.Ctx, payee domain.Address) (*big.Int, error) {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return nil, err
	}
	return im.payOut(c, payee, payee)
}

func (im *impl) Sweep(c ctx.Ctx, caller, payee, to domain.Address) (*big.Int, error) {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return nil, err
	}
	if !im.access.HasRole(c, caller, access.RoleAdmin) {
		return nil, domain.ErrNotAdmin
	}
	if !im.access.Paused(c) {
		return nil, domain.ErrNotPaused
	}
	return im.payOut(c, payee, to)
}

// payOut zeroes the payee's entry before pushing it to `to`, a failed push restores the entry
func (im *impl) payOut(c ctx.Ctx, payee, to domain.Address) (*big.Int, error) {
	amount, err := im.repo.Take(c, im.holder, payee)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "holder": im.holder, "payee": payee}).Error("repo.Take failed")
		return nil, err
	}
	if amount.Sign() == 0 {
		return amount, nil
	}

	if im.sender.Send(c, im.holder, to, amount) {
		return amount, nil
	}

	if err := im.repo.Add(c, im.holder, payee, amount); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"holder": im.holder,
			"payee":  payee,
			"amount": amount.String(),
		}).Error("repo.Add restore failed")
		return nil, err
	}
	return new(big.Int), nil
}

package usecase

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/account"
)

var errFaucetDisabled = xerrors.Errorf("faucet disabled: %w", domain.ErrNotAuthorized)

type Config struct {
	Repo   account.Repo
	Access access.Control
	// Faucet enables minting, memory networks only
	Faucet bool
}

type impl struct {
	repo   account.Repo
	access access.Control
	faucet bool
}

func New(cfg *Config) account.Usecase {
	return &impl{
		repo:   cfg.Repo,
		access: cfg.Access,
		faucet: cfg.Faucet,
	}
}

func (im *impl) Balance(c ctx.Ctx, addr domain.Address) (*big.Int, error) {
	b, err := im.repo.Balance(c, addr)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "address": addr}).Error("repo.Balance failed")
		return nil, err
	}
	return b, nil
}

func (im *impl) Faucet(c ctx.Ctx, caller, to domain.Address, amount *big.Int) error {
	if !im.faucet {
		return errFaucetDisabled
	}
	if !im.access.HasRole(c, caller, access.RoleAdmin) {
		return domain.ErrNotAdmin
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	if err := im.repo.Credit(c, to, amount); err != nil {
		c.WithFields(log.Fields{"err": err, "to": to}).Error("repo.Credit failed")
		return err
	}
	c.WithFields(log.Fields{"to": to, "amount": amount.String()}).Info("faucet minted")
	return nil
}

package account

import (
	"math/big"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Balance is the native value held by an address
type Balance struct {
	Address   domain.Address `json:"address" bson:"_id"`
	Amount    string         `json:"amount" bson:"amount"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Repo stores native balances. Unknown addresses hold zero.
type Repo interface {
	Balance(ctx ctx.Ctx, addr domain.Address) (*big.Int, error)
	Credit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error
	// Debit fails with domain.ErrInsufficientBalance and leaves the balance untouched
	Debit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error
}

type Usecase interface {
	Balance(ctx ctx.Ctx, addr domain.Address) (*big.Int, error)
	// Faucet mints value out of thin air, for local networks only
	Faucet(ctx ctx.Ctx, caller, to domain.Address, amount *big.Int) error
}

package token

import (
	"math/big"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Token is a fungible token with ERC20 style balances
type Token interface {
	Address() domain.Address
	Symbol() string
	BalanceOf(ctx ctx.Ctx, holder domain.Address) (*big.Int, error)
	// Transfer fails with domain.ErrInsufficientBalance when from cannot cover amount
	Transfer(ctx ctx.Ctx, from, to domain.Address, amount *big.Int) error
	Mint(ctx ctx.Ctx, to domain.Address, amount *big.Int) error
}

// Directory resolves tokens by contract address
type Directory interface {
	Get(ctx ctx.Ctx, addr domain.Address) (Token, error)
	Register(t Token)
}

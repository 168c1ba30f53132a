package ledger

import (
	"math/big"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Entry is the claimable balance a holder owes a payee after a failed push
type Entry struct {
	Holder    domain.Address `json:"holder" bson:"holder"`
	Payee     domain.Address `json:"payee" bson:"payee"`
	Amount    string         `json:"amount" bson:"amount"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Repo keeps pending entries keyed by (holder, payee). Missing entries are zero.
type Repo interface {
	Get(ctx ctx.Ctx, holder, payee domain.Address) (*big.Int, error)
	Add(ctx ctx.Ctx, holder, payee domain.Address, amount *big.Int) error
	// Take zeroes the entry and returns what it held
	Take(ctx ctx.Ctx, holder, payee domain.Address) (*big.Int, error)
	Total(ctx ctx.Ctx, holder domain.Address) (*big.Int, error)
	FindAll(ctx ctx.Ctx, holder domain.Address) ([]Entry, error)
}

// Ledger is the pending balance book of a single holder account
type Ledger interface {
	Holder() domain.Address
	Credit(ctx ctx.Ctx, payee domain.Address, amount *big.Int) error
	BalanceOf(ctx ctx.Ctx, payee domain.Address) (*big.Int, error)
	Total(ctx ctx.Ctx) (*big.Int, error)
	Entries(ctx ctx.Ctx) ([]Entry, error)
	// Withdraw pays the payee its whole entry. A failed push restores the entry and returns zero.
	Withdraw(ctx ctx.Ctx, payee domain.Address) (*big.Int, error)
	// Sweep moves the payee's entry to `to`. Admin only, paused only.
	Sweep(ctx ctx.Ctx, caller, payee, to domain.Address) (*big.Int, error)
}

// Directory resolves the ledger of a holder
type Directory interface {
	Get(ctx ctx.Ctx, holder domain.Address) (Ledger, error)
	Add(l Ledger)
}

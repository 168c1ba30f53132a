package repository

import (
	"math/big"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
)

type memoryRepo struct {
	mu       sync.Mutex
	balances map[domain.Address]*big.Int
}

// NewMemory keeps balances in process, for local networks and tests
func NewMemory() account.Repo {
	return &memoryRepo{
		balances: make(map[domain.Address]*big.Int),
	}
}

func (im *memoryRepo) Balance(ctx ctx.Ctx, addr domain.Address) (*big.Int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	return domain.CopyAmount(im.balances[addr.ToLower()]), nil
}

func (im *memoryRepo) Credit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	addr = addr.ToLower()
	cur := domain.CopyAmount(im.balances[addr])
	im.balances[addr] = cur.Add(cur, amount)
	return nil
}

func (im *memoryRepo) Debit(ctx ctx.Ctx, addr domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	addr = addr.ToLower()
	cur := domain.CopyAmount(im.balances[addr])
	if cur.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	im.balances[addr] = cur.Sub(cur, amount)
	return nil
}

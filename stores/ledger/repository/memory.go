package repository

import (
	"math/big"
	"sort"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
)

type memoryRepo struct {
	mu      sync.Mutex
	entries map[domain.Address]map[domain.Address]*big.Int
}

func NewMemory() ledger.Repo {
	return &memoryRepo{
		entries: make(map[domain.Address]map[domain.Address]*big.Int),
	}
}

func (im *memoryRepo) Get(ctx ctx.Ctx, holder, payee domain.Address) (*big.Int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	return domain.CopyAmount(im.entries[holder.ToLower()][payee.ToLower()]), nil
}

func (im *memoryRepo) Add(ctx ctx.Ctx, holder, payee domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	holder, payee = holder.ToLower(), payee.ToLower()
	book, ok := im.entries[holder]
	if !ok {
		book = make(map[domain.Address]*big.Int)
		im.entries[holder] = book
	}
	cur := domain.CopyAmount(book[payee])
	book[payee] = cur.Add(cur, amount)
	return nil
}

func (im *memoryRepo) Take(ctx ctx.Ctx, holder, payee domain.Address) (*big.Int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	book := im.entries[holder.ToLower()]
	if book == nil {
		return new(big.Int), nil
	}
	payee = payee.ToLower()
	res := domain.CopyAmount(book[payee])
	delete(book, payee)
	return res, nil
}

func (im *memoryRepo) Total(ctx ctx.Ctx, holder domain.Address) (*big.Int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	res := new(big.Int)
	for _, v := range im.entries[holder.ToLower()] {
		res.Add(res, v)
	}
	return res, nil
}

func (im *memoryRepo) FindAll(ctx ctx.Ctx, holder domain.Address) ([]ledger.Entry, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	holder = holder.ToLower()
	res := []ledger.Entry{}
	for payee, v := range im.entries[holder] {
		if v.Sign() == 0 {
			continue
		}
		res = append(res, ledger.Entry{
			Holder: holder,
			Payee:  payee,
			Amount: v.String(),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Payee < res[j].Payee })
	return res, nil
}

package repository

import (
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/token"
)

type memoryToken struct {
	address domain.Address
	symbol  string

	mu        sync.Mutex
	balances  map[domain.Address]*big.Int
	rejecting map[domain.Address]bool
}

// MemoryToken is an in-process fungible token. Reject makes transfers to an address fail.
type MemoryToken interface {
	token.Token
	Reject(addr domain.Address, reject bool)
}

func NewMemory(address domain.Address, symbol string) MemoryToken {
	return &memoryToken{
		address:   address.ToLower(),
		symbol:    symbol,
		balances:  make(map[domain.Address]*big.Int),
		rejecting: make(map[domain.Address]bool),
	}
}

func (t *memoryToken) Address() domain.Address {
	return t.address
}

func (t *memoryToken) Symbol() string {
	return t.symbol
}

func (t *memoryToken) Reject(addr domain.Address, reject bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rejecting[addr.ToLower()] = reject
}

func (t *memoryToken) BalanceOf(ctx ctx.Ctx, holder domain.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.CopyAmount(t.balances[holder.ToLower()]), nil
}

func (t *memoryToken) Transfer(ctx ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	if err := gas.Charge(ctx, gas.CostCall); err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	from, to = from.ToLower(), to.ToLower()
	if t.rejecting[to] {
		return xerrors.Errorf("%s transfer to %s rejected", t.symbol, to)
	}
	bal := domain.CopyAmount(t.balances[from])
	if bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	t.balances[from] = bal.Sub(bal, amount)
	t.balances[to] = new(big.Int).Add(domain.CopyAmount(t.balances[to]), amount)
	return nil
}

func (t *memoryToken) Mint(ctx ctx.Ctx, to domain.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	to = to.ToLower()
	t.balances[to] = new(big.Int).Add(domain.CopyAmount(t.balances[to]), amount)
	return nil
}

type directory struct {
	mu     sync.RWMutex
	tokens map[domain.Address]token.Token
}

func NewDirectory(tokens ...token.Token) token.Directory {
	d := &directory{tokens: make(map[domain.Address]token.Token)}
	for _, t := range tokens {
		d.Register(t)
	}
	return d
}

func (d *directory) Get(ctx ctx.Ctx, addr domain.Address) (token.Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tokens[addr.ToLower()]
	if !ok {
		return nil, xerrors.Errorf("token %s: %w", addr, domain.ErrNotFound)
	}
	return t, nil
}

func (d *directory) Register(t token.Token) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens[t.Address().ToLower()] = t
}

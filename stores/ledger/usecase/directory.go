package usecase

import (
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
)

type directory struct {
	mu      sync.RWMutex
	ledgers map[domain.Address]ledger.Ledger
}

// NewDirectory indexes the ledgers of the engine and of every splitter
func NewDirectory() ledger.Directory {
	return &directory{
		ledgers: make(map[domain.Address]ledger.Ledger),
	}
}

func (d *directory) Get(c ctx.Ctx, holder domain.Address) (ledger.Ledger, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.ledgers[holder.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (d *directory) Add(l ledger.Ledger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ledgers[l.Holder().ToLower()] = l
}

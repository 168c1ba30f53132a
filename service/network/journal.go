package network

import (
	"context"
	"math/big"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

type move struct {
	from   domain.Address
	to     domain.Address
	amount *big.Int
}

// journal records the moves made under one transfer, nested transfers included
type journal struct {
	mu    sync.Mutex
	moves []move
}

type journalKey struct{}

func withJournal(parent ctx.Ctx, j *journal) ctx.Ctx {
	return ctx.WithContext(parent, context.WithValue(parent.Context, journalKey{}, j))
}

func journalFrom(c ctx.Ctx) *journal {
	if c.Context == nil {
		return nil
	}
	j, _ := c.Value(journalKey{}).(*journal)
	return j
}

func (j *journal) record(from, to domain.Address, amount *big.Int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.moves = append(j.moves, move{from, to, domain.CopyAmount(amount)})
}

func (j *journal) merge(child *journal) {
	child.mu.Lock()
	moves := append([]move{}, child.moves...)
	child.mu.Unlock()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.moves = append(j.moves, moves...)
}

// undo returns the moves latest first
func (j *journal) undo() []move {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := make([]move, 0, len(j.moves))
	for i := len(j.moves) - 1; i >= 0; i-- {
		res = append(res, j.moves[i])
	}
	return res
}

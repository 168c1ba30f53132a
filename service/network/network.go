package network

import (
	"errors"
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
)

var (
	met     metrics.Service
	metOnce sync.Once
)

type Config struct {
	Accounts account.Repo
}

type impl struct {
	accounts account.Repo

	mu        sync.RWMutex
	receivers map[domain.Address]domain.Receiver
}

func New(cfg *Config) domain.Network {
	metOnce.Do(func() {
		met = metrics.New("network")
	})
	return &impl{
		accounts:  cfg.Accounts,
		receivers: make(map[domain.Address]domain.Receiver),
	}
}

func (im *impl) Register(addr domain.Address, r domain.Receiver) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if r == nil {
		delete(im.receivers, addr.ToLower())
		return
	}
	im.receivers[addr.ToLower()] = r
}

func (im *impl) receiver(addr domain.Address) domain.Receiver {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.receivers[addr]
}

func (im *impl) BalanceOf(c ctx.Ctx, addr domain.Address) (*big.Int, error) {
	return im.accounts.Balance(c, addr.ToLower())
}

func (im *impl) Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int, gasLimit uint64) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}
	from, to = from.ToLower(), to.ToLower()

	if err := im.accounts.Debit(c, from, amount); err != nil {
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			c.WithFields(log.Fields{"err": err, "from": from}).Error("accounts.Debit failed")
		}
		return err
	}
	if err := im.accounts.Credit(c, to, amount); err != nil {
		c.WithFields(log.Fields{"err": err, "to": to}).Error("accounts.Credit failed")
		if err := im.accounts.Credit(c, from, amount); err != nil {
			c.WithFields(log.Fields{"err": err, "from": from, "amount": amount}).Error("accounts.Credit refund failed")
		}
		return err
	}

	j := &journal{}
	j.record(from, to, amount)

	if r := im.receiver(to); r != nil {
		// the callee never gets more than the caller has left
		limit := gasLimit
		if remaining := gas.Remaining(c); remaining < limit {
			limit = remaining
		}
		meter := gas.NewMeter(limit)
		hc := withJournal(gas.WithMeter(ctx.WithValue(c, "receiver", to), meter), j)

		err := invoke(hc, r, from, amount)
		if chargeErr := gas.Charge(c, meter.Used()); chargeErr != nil && err == nil {
			err = chargeErr
		}
		if err != nil {
			met.BumpSum("transfer.rejected", 1)
			im.revert(c, j)
			return xerrors.Errorf("payment to %s rejected: %w", to, err)
		}
	}

	if parent := journalFrom(c); parent != nil {
		parent.merge(j)
	}
	return nil
}

func invoke(c ctx.Ctx, r domain.Receiver, from domain.Address, amount *big.Int) (err error) {
	defer func() {
		if p := recover(); p != nil {
			c.WithField("panic", p).Warn("receiver panicked")
			err = xerrors.Errorf("receiver panicked: %v", p)
		}
	}()
	return r.Receive(c, from, domain.CopyAmount(amount))
}

// revert undoes every move of the journal. A failed undo is logged, the balance stays where it is.
func (im *impl) revert(c ctx.Ctx, j *journal) {
	for _, m := range j.undo() {
		if err := im.accounts.Debit(c, m.to, m.amount); err != nil {
			c.WithFields(log.Fields{"err": err, "from": m.from, "to": m.to, "amount": m.amount}).Error("revert: accounts.Debit failed")
			continue
		}
		if err := im.accounts.Credit(c, m.from, m.amount); err != nil {
			c.WithFields(log.Fields{"err": err, "from": m.from, "to": m.to, "amount": m.amount}).Error("revert: accounts.Credit failed")
		}
	}
}

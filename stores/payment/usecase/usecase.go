package usecase

import (
	"math/big"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	"github.com/x-xyz/auctionhouse/domain"
)

var (
	met     metrics.Service
	metOnce sync.Once
)

type Config struct {
	Network domain.Network
	// Stipend is the gas a bounded push forwards, gas.DefaultStipend when zero.
	// It must stay below gas.CostCall so a receiver can never call back into a component,
	// larger values fall back to gas.DefaultStipend.
	Stipend uint64
}

type impl struct {
	network domain.Network
	stipend uint64
}

func New(cfg *Config) domain.Sender {
	metOnce.Do(func() {
		met = metrics.New("payment")
	})
	return &impl{
		network: cfg.Network,
		stipend: boundStipend(cfg.Stipend),
	}
}

// boundStipend keeps a push below the cost of entering any component. A hook that called back in
// and then failed would have its nested moves reverted while the component state it changed stays.
func boundStipend(stipend uint64) uint64 {
	if stipend == 0 {
		return gas.DefaultStipend
	}
	if stipend >= gas.CostCall {
		log.Log().WithFields(log.Fields{
			"stipend": stipend,
			"max":     gas.CostCall - 1,
		}).Warn("stipend lets receivers call back in, using the default")
		return gas.DefaultStipend
	}
	return stipend
}

func (im *impl) Send(c ctx.Ctx, from, to domain.Address, amount *big.Int) bool {
	if amount == nil || amount.Sign() == 0 {
		return true
	}
	if err := im.network.Transfer(c, from, to, amount, im.stipend); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"from":   from,
			"to":     to,
			"amount": amount.String(),
		}).Warn("bounded push failed")
		met.BumpSum("failed", 1)
		return false
	}
	return true
}

func (im *impl) SendExact(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if err := im.network.Transfer(c, from, to, amount, gas.Unlimited); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"from":   from,
			"to":     to,
			"amount": amount.String(),
		}).Error("network.Transfer failed")
		return err
	}
	return nil
}

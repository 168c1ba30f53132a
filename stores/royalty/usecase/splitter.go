package usecase

import (
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/domain/token"
	eventUsecase "github.com/x-xyz/auctionhouse/stores/event/usecase"
)

// DefaultGasReserve covers two pushes and two FailedPayment events
const DefaultGasReserve = 2*gas.CostCall + 2*gas.CostEvent

type splitter struct {
	address    domain.Address
	repo       royalty.Repo
	network    domain.Network
	sender     domain.Sender
	ledger     ledger.Ledger
	tokens     token.Directory
	emitter    *eventUsecase.Emitter
	gasReserve uint64

	mu     sync.RWMutex
	record royalty.Record

	// set while a split pushes value out
	splitting int32
}

func (s *splitter) Address() domain.Address {
	return s.address
}

func (s *splitter) Initialize(c ctx.Ctx, payeeA, payeeB domain.Address) error {
	if payeeA.IsEmpty() || payeeB.IsEmpty() {
		return domain.ErrInvalidAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record.Initialized {
		return domain.ErrAlreadyInitialized
	}

	rec := s.record
	rec.PayeeA = payeeA.ToLower()
	rec.PayeeB = payeeB.ToLower()
	rec.Initialized = true
	if err := s.repo.Upsert(c, &rec); err != nil {
		c.WithFields(log.Fields{"err": err, "splitter": s.address}).Error("repo.Upsert failed")
		return err
	}
	s.record = rec
	return nil
}

func (s *splitter) Payees(c ctx.Ctx) (domain.Address, domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.record.Initialized {
		return "", "", domain.ErrNotInitialized
	}
	return s.record.PayeeA, s.record.PayeeB, nil
}

func (s *splitter) isPayee(c ctx.Ctx, caller domain.Address) (bool, error) {
	a, b, err := s.Payees(c)
	if err != nil {
		return false, err
	}
	return caller.Equals(a) || caller.Equals(b), nil
}

// Receive runs on every incoming payment. The value is already in the splitter's account, it is
// split right away when the payer forwarded enough gas and kept for GetRoyalties otherwise.
func (s *splitter) Receive(c ctx.Ctx, from domain.Address, amount *big.Int) error {
	if err := s.emitter.Emit(c, domain.EventRoyaltyReceived, from.ToLowerStr(), amount.String()); err != nil {
		return err
	}

	if _, _, err := s.Payees(c); err != nil {
		return nil
	}
	if gas.Remaining(c) < s.gasReserve {
		c.WithField("amount", amount.String()).Debug("gas below reserve, keeping royalty unsplit")
		return nil
	}
	if !atomic.CompareAndSwapInt32(&s.splitting, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&s.splitting, 0)

	s.split(c, amount)
	return nil
}

func (s *splitter) GetRoyalties(c ctx.Ctx, caller domain.Address) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	if ok, err := s.isPayee(c, caller); err != nil {
		return err
	} else if !ok {
		return domain.ErrNotPayee
	}
	if !atomic.CompareAndSwapInt32(&s.splitting, 0, 1) {
		return domain.ErrSplitInProgress
	}
	defer atomic.StoreInt32(&s.splitting, 0)

	unsplit, err := s.unsplit(c)
	if err != nil {
		return err
	}
	if unsplit.Sign() <= 0 {
		return nil
	}
	s.split(c, unsplit)
	return nil
}

// unsplit is the balance not yet owed to a payee through the ledger
func (s *splitter) unsplit(c ctx.Ctx) (*big.Int, error) {
	balance, err := s.network.BalanceOf(c, s.address)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "splitter": s.address}).Error("network.BalanceOf failed")
		return nil, err
	}
	pending, err := s.ledger.Total(c)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "splitter": s.address}).Error("ledger.Total failed")
		return nil, err
	}
	return balance.Sub(balance, pending), nil
}

// split pushes floor(amount/2) to each payee. The odd wei stays in the splitter.
func (s *splitter) split(c ctx.Ctx, amount *big.Int) {
	a, b, err := s.Payees(c)
	if err != nil {
		return
	}
	half := new(big.Int).Quo(amount, domain.Big2)
	if half.Sign() == 0 {
		return
	}
	for _, payee := range []domain.Address{a, b} {
		if s.sender.Send(c, s.address, payee, half) {
			continue
		}
		if err := s.ledger.Credit(c, payee, half); err != nil {
			c.WithFields(log.Fields{
				"err":    err,
				"payee":  payee,
				"amount": half.String(),
			}).Error("ledger.Credit failed")
			continue
		}
		if err := s.emitter.Emit(c, domain.EventFailedPayment, payee.ToLowerStr(), half.String()); err != nil {
			c.WithFields(log.Fields{"err": err, "payee": payee}).Warn("emit FailedPayment failed")
		}
	}
}

// GetRoyaltiesToken splits the splitter's token balance, the odd unit goes to payee B
func (s *splitter) GetRoyaltiesToken(c ctx.Ctx, caller domain.Address, tokenAddr domain.Address) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	if ok, err := s.isPayee(c, caller); err != nil {
		return err
	} else if !ok {
		return domain.ErrNotPayee
	}

	if s.tokens == nil {
		return domain.ErrNotFound
	}
	t, err := s.tokens.Get(c, tokenAddr)
	if err != nil {
		return err
	}
	balance, err := t.BalanceOf(c, s.address)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "token": tokenAddr}).Error("token.BalanceOf failed")
		return err
	}
	if balance.Sign() == 0 {
		return nil
	}

	a, b, _ := s.Payees(c)
	half := new(big.Int).Quo(balance, domain.Big2)
	if err := t.Transfer(c, s.address, a, half); err != nil {
		return xerrors.Errorf("token transfer to %s: %w", a, err)
	}
	if err := t.Transfer(c, s.address, b, new(big.Int).Sub(balance, half)); err != nil {
		// undo the first leg so the call fails as a whole
		if undoErr := t.Transfer(c, a, s.address, half); undoErr != nil {
			c.WithFields(log.Fields{"err": undoErr, "token": tokenAddr, "payee": a}).Error("token transfer undo failed")
		}
		return xerrors.Errorf("token transfer to %s: %w", b, err)
	}
	return nil
}

// ShowPendingRoyalties is everything the splitter holds, pending entries and unsplit value
func (s *splitter) ShowPendingRoyalties(c ctx.Ctx) (*big.Int, error) {
	return s.network.BalanceOf(c, s.address)
}

func (s *splitter) Withdraw(c ctx.Ctx, payee domain.Address) (*big.Int, error) {
	return s.ledger.Withdraw(c, payee)
}

func newRecord(addr domain.Address) royalty.Record {
	return royalty.Record{Address: addr.ToLower(), CreatedAt: time.Now()}
}

package usecase

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/domain/token"
	eventUsecase "github.com/x-xyz/auctionhouse/stores/event/usecase"
	ledgerUsecase "github.com/x-xyz/auctionhouse/stores/ledger/usecase"
)

type Config struct {
	// Address deploys the splitters, their addresses derive from it and a nonce
	Address    domain.Address
	Repo       royalty.Repo
	Network    domain.Network
	Sender     domain.Sender
	Access     access.Control
	LedgerRepo ledger.Repo
	Ledgers    ledger.Directory
	Tokens     token.Directory
	Sink       domain.EventSink
	// GasReserve is the gas a payment must leave for an immediate split, DefaultGasReserve when zero
	GasReserve uint64
}

type factory struct {
	cfg Config

	mu        sync.RWMutex
	splitters map[domain.Address]*splitter
}

func NewFactory(cfg *Config) royalty.Factory {
	c := *cfg
	if c.GasReserve == 0 {
		c.GasReserve = DefaultGasReserve
	}
	return &factory{
		cfg:       c,
		splitters: make(map[domain.Address]*splitter),
	}
}

func (f *factory) build(rec royalty.Record) *splitter {
	l := ledgerUsecase.New(&ledgerUsecase.Config{
		Holder: rec.Address,
		Repo:   f.cfg.LedgerRepo,
		Sender: f.cfg.Sender,
		Access: f.cfg.Access,
	})
	s := &splitter{
		address:    rec.Address,
		repo:       f.cfg.Repo,
		network:    f.cfg.Network,
		sender:     f.cfg.Sender,
		ledger:     l,
		tokens:     f.cfg.Tokens,
		emitter:    eventUsecase.NewEmitter(f.cfg.Sink, rec.Address),
		gasReserve: f.cfg.GasReserve,
		record:     rec,
	}
	f.splitters[rec.Address] = s
	f.cfg.Network.Register(rec.Address, s)
	if f.cfg.Ledgers != nil {
		f.cfg.Ledgers.Add(l)
	}
	return s
}

func (f *factory) Deploy(c ctx.Ctx, payeeA, payeeB domain.Address) (royalty.Splitter, error) {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return nil, err
	}
	if payeeA.IsEmpty() || payeeB.IsEmpty() {
		return nil, domain.ErrInvalidAddress
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	nonce, err := f.cfg.Repo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("repo.Count failed")
		return nil, err
	}
	addr := domain.Address(crypto.CreateAddress(common.HexToAddress(string(f.cfg.Address)), uint64(nonce)).Hex()).ToLower()

	rec := newRecord(addr)
	if err := f.cfg.Repo.Upsert(c, &rec); err != nil {
		c.WithFields(log.Fields{"err": err, "splitter": addr}).Error("repo.Upsert failed")
		return nil, err
	}
	s := f.build(rec)
	if err := s.Initialize(c, payeeA, payeeB); err != nil {
		return nil, err
	}

	c.WithFields(log.Fields{
		"splitter": addr,
		"payeeA":   payeeA,
		"payeeB":   payeeB,
	}).Info("splitter deployed")
	return s, nil
}

func (f *factory) Get(c ctx.Ctx, addr domain.Address) (royalty.Splitter, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.splitters[addr.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *factory) FindAll(c ctx.Ctx) ([]royalty.Record, error) {
	return f.cfg.Repo.FindAll(c)
}

func (f *factory) Load(c ctx.Ctx) error {
	records, err := f.cfg.Repo.FindAll(c)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		rec.Address = rec.Address.ToLower()
		if _, ok := f.splitters[rec.Address]; ok {
			continue
		}
		f.build(rec)
	}
	c.WithField("count", len(records)).Info("splitters loaded")
	return nil
}

package usecase

import (
	"errors"
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/domain/registry"
	eventUsecase "github.com/x-xyz/auctionhouse/stores/event/usecase"
)

var (
	met     metrics.Service
	metOnce sync.Once
)

type Config struct {
	Address  domain.Address
	Treasury domain.Address
	FeeBps   uint16

	Repo     auction.Repo
	Registry registry.Registry
	Network  domain.Network
	Sender   domain.Sender
	// Ledger holds what failed pushes owe, its holder is Address
	Ledger ledger.Ledger
	Access access.Control
	Sink   domain.EventSink
}

type Option func(*impl)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(im *impl) {
		im.now = now
	}
}

type impl struct {
	address  domain.Address
	treasury domain.Address
	feeBps   uint16

	repo     auction.Repo
	registry registry.Registry
	network  domain.Network
	sender   domain.Sender
	ledger   ledger.Ledger
	access   access.Control
	emitter  *eventUsecase.Emitter
	now      func() time.Time

	// mu orders every state change of every auction
	mu sync.Mutex
	// inflight is value committed to a payee but not pushed or credited yet
	inflight *big.Int

	withdrawing int32
}

func New(cfg *Config, opts ...Option) (auction.UseCase, error) {
	if !domain.IsValidBps(cfg.FeeBps) {
		return nil, domain.ErrFeeTooHigh
	}
	metOnce.Do(func() {
		met = metrics.New("auction")
	})

	im := &impl{
		address:  cfg.Address.ToLower(),
		treasury: cfg.Treasury.ToLower(),
		feeBps:   cfg.FeeBps,
		repo:     cfg.Repo,
		registry: cfg.Registry,
		network:  cfg.Network,
		sender:   cfg.Sender,
		ledger:   cfg.Ledger,
		access:   cfg.Access,
		emitter:  eventUsecase.NewEmitter(cfg.Sink, cfg.Address),
		now:      time.Now,
		inflight: new(big.Int),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im, nil
}

func (im *impl) Address() domain.Address {
	return im.address
}

func (im *impl) FeeBps() uint16 {
	return im.feeBps
}

func (im *impl) Treasury() domain.Address {
	return im.treasury
}

func (im *impl) Paused(c ctx.Ctx) bool {
	return im.access.Paused(c)
}

func (im *impl) Pause(c ctx.Ctx, caller domain.Address) error {
	return im.access.Pause(c, caller)
}

func (im *impl) Unpause(c ctx.Ctx, caller domain.Address) error {
	return im.access.Unpause(c, caller)
}

func (im *impl) enter(c ctx.Ctx) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	if im.access.Paused(c) {
		return domain.ErrPaused
	}
	return nil
}

// findOpen maps a missing auction to notFound
func (im *impl) findOpen(c ctx.Ctx, id domain.AssetId, notFound error) (*auction.Auction, error) {
	a, err := im.repo.FindOne(c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.FindOne failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) CreateAuction(c ctx.Ctx, caller domain.Address, id domain.AssetId, startingPrice, endingPrice *big.Int, duration time.Duration) error {
	defer met.BumpTime("createAuction.time").End()
	if err := im.enter(c); err != nil {
		return err
	}
	if startingPrice == nil || startingPrice.Sign() <= 0 {
		return domain.ErrZeroStartingPrice
	}
	if endingPrice == nil || endingPrice.Cmp(startingPrice) < 0 {
		return domain.ErrInvalidPriceRange
	}
	if duration <= 0 {
		return domain.ErrInvalidDuration
	}

	im.mu.Lock()
	a, err := im.createLocked(c, caller, id, startingPrice, endingPrice, duration)
	im.mu.Unlock()
	if err != nil {
		return err
	}

	im.emit(c, domain.EventAuctionCreated, string(id), a.StartingPrice.String(), a.EndingPrice.String(), strconv.FormatInt(int64(duration/time.Second), 10))
	return nil
}

func (im *impl) createLocked(c ctx.Ctx, caller domain.Address, id domain.AssetId, startingPrice, endingPrice *big.Int, duration time.Duration) (*auction.Auction, error) {
	if _, err := im.repo.FindOne(c, id); err == nil {
		return nil, domain.ErrAuctionAlreadyRunning
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.FindOne failed")
		return nil, err
	}

	owner, err := im.registry.OwnerOf(c, id)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(owner) && !im.access.HasRole(c, caller, access.RoleAdmin) {
		return nil, domain.ErrNotSellerOrAdmin
	}

	if err := im.registry.TransferCustody(c, im.address, id, owner, im.address); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id, "owner": owner}).Warn("registry.TransferCustody into escrow failed")
		return nil, err
	}

	a := &auction.Auction{
		AssetId:       id,
		Seller:        owner.ToLower(),
		StartingPrice: domain.CopyAmount(startingPrice),
		EndingPrice:   domain.CopyAmount(endingPrice),
		Duration:      duration,
		CreatedAt:     im.now(),
		LastBidAmount: new(big.Int),
	}
	if err := im.repo.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Insert failed")
		im.moveCustody(c, id, owner)
		return nil, err
	}
	return a, nil
}

func (im *impl) Bid(c ctx.Ctx, bidder domain.Address, id domain.AssetId, amount *big.Int) error {
	defer met.BumpTime("bid.time").End()
	if err := im.enter(c); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrNegativeAmount
	}

	im.mu.Lock()
	res, err := im.bidLocked(c, bidder, id, amount)
	im.mu.Unlock()
	if err != nil {
		if res != nil {
			im.pay(c, bidder, res.excess)
		}
		return err
	}

	im.emit(c, domain.EventAuctionBid, string(id), res.amount.String(), bidder.ToLowerStr())
	im.pay(c, bidder, res.excess)
	if !res.prevBidder.IsEmpty() {
		im.pay(c, res.prevBidder, res.prevAmount)
	}
	return nil
}

type bidResult struct {
	amount     *big.Int
	excess     *big.Int
	prevBidder domain.Address
	prevAmount *big.Int
}

func (im *impl) bidLocked(c ctx.Ctx, bidder domain.Address, id domain.AssetId, amount *big.Int) (*bidResult, error) {
	a, err := im.findOpen(c, id, domain.ErrNoSuchAuction)
	if err != nil {
		return nil, err
	}
	now := im.now()
	if a.Expired(now) {
		return nil, domain.ErrAuctionNotOpen
	}
	if a.EndingPriceReached() {
		return nil, domain.ErrEndingPriceReached
	}
	if !a.HasBid() && amount.Cmp(a.StartingPrice) < 0 {
		return nil, domain.ErrBidBelowMinPrice
	}
	if a.HasBid() && amount.Cmp(a.LastBidAmount) <= 0 {
		return nil, domain.ErrBidBelowLastBid
	}

	if err := im.network.Transfer(c, bidder, im.address, amount, gas.Unlimited); err != nil {
		return nil, err
	}

	res := &bidResult{
		amount: domain.CopyAmount(amount),
		excess: new(big.Int),
	}
	if amount.Cmp(a.EndingPrice) > 0 {
		res.amount = domain.CopyAmount(a.EndingPrice)
		res.excess = new(big.Int).Sub(amount, a.EndingPrice)
	}
	if a.HasBid() {
		res.prevBidder = a.LastBidder
		res.prevAmount = domain.CopyAmount(a.LastBidAmount)
	}

	a.LastBidder = bidder.ToLower()
	a.LastBidAmount = res.amount
	a.LastBidTime = now
	if err := im.repo.Update(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Update failed")
		// the pulled value goes back once the lock is released
		refund := domain.CopyAmount(amount)
		im.reserve(refund)
		return &bidResult{excess: refund}, err
	}

	im.reserve(res.excess)
	im.reserve(res.prevAmount)
	return res, nil
}

func (im *impl) CancelAuction(c ctx.Ctx, caller domain.Address, id domain.AssetId) error {
	defer met.BumpTime("cancelAuction.time").End()
	if err := im.enter(c); err != nil {
		return err
	}

	im.mu.Lock()
	a, err := im.findOpen(c, id, domain.ErrAuctionNotOpen)
	if err == nil && a.Expired(im.now()) {
		err = domain.ErrAuctionNotOpen
	}
	if err == nil && !caller.Equals(a.Seller) {
		err = domain.ErrNotSeller
	}
	if err == nil {
		err = im.cancelLocked(c, a)
	}
	im.mu.Unlock()
	if err != nil {
		return err
	}

	im.afterCancel(c, a)
	return nil
}

func (im *impl) CancelAuctionWhenPaused(c ctx.Ctx, caller domain.Address, id domain.AssetId) error {
	defer met.BumpTime("cancelAuctionWhenPaused.time").End()
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	if !im.access.HasRole(c, caller, access.RoleAdmin) {
		return domain.ErrNotAdmin
	}
	if !im.access.Paused(c) {
		return domain.ErrNotPaused
	}

	im.mu.Lock()
	a, err := im.findOpen(c, id, domain.ErrNoSuchAuction)
	if err == nil {
		err = im.cancelLocked(c, a)
	}
	im.mu.Unlock()
	if err != nil {
		return err
	}

	im.afterCancel(c, a)
	return nil
}

// cancelLocked returns custody to the seller and closes the auction
func (im *impl) cancelLocked(c ctx.Ctx, a *auction.Auction) error {
	if err := im.closeLocked(c, a, a.Seller); err != nil {
		return err
	}
	im.reserve(a.Escrow())
	return nil
}

func (im *impl) afterCancel(c ctx.Ctx, a *auction.Auction) {
	im.emit(c, domain.EventAuctionCancelled, string(a.AssetId))
	if a.HasBid() {
		im.pay(c, a.LastBidder, a.LastBidAmount)
	}
}

func (im *impl) FinishAuction(c ctx.Ctx, caller domain.Address, id domain.AssetId) error {
	defer met.BumpTime("finishAuction.time").End()
	if err := im.enter(c); err != nil {
		return err
	}

	im.mu.Lock()
	a, err := im.findOpen(c, id, domain.ErrNoSuchAuction)
	if err == nil && !a.Endable(im.now()) {
		err = domain.ErrNotYetEndable
	}
	winner := domain.EmptyAddress
	if err == nil {
		winner = a.Seller
		if a.HasBid() {
			winner = a.LastBidder
		}
		err = im.closeLocked(c, a, winner)
	}
	if err == nil {
		im.reserve(a.Escrow())
	}
	im.mu.Unlock()
	if err != nil {
		return err
	}

	im.emit(c, domain.EventAuctionFinish, string(id), a.Escrow().String(), winner.ToLowerStr())
	if a.HasBid() {
		fee := domain.MulBps(a.LastBidAmount, im.feeBps)
		im.pay(c, im.treasury, fee)
		im.pay(c, a.Seller, new(big.Int).Sub(a.LastBidAmount, fee))
	}
	return nil
}

// closeLocked moves custody to `to` and removes the auction. A failed removal moves custody back.
func (im *impl) closeLocked(c ctx.Ctx, a *auction.Auction, to domain.Address) error {
	if err := im.registry.TransferCustody(c, im.address, a.AssetId, im.address, to); err != nil {
		c.WithFields(log.Fields{"err": err, "id": a.AssetId, "to": to}).Error("registry.TransferCustody out of escrow failed")
		return err
	}
	if err := im.repo.Remove(c, a.AssetId); err != nil {
		c.WithFields(log.Fields{"err": err, "id": a.AssetId}).Error("repo.Remove failed")
		if err := im.registry.TransferCustody(c, im.address, a.AssetId, to, im.address); err != nil {
			c.WithFields(log.Fields{"err": err, "id": a.AssetId}).Error("registry.TransferCustody back into escrow failed")
		}
		return err
	}
	return nil
}

// moveCustody hands an escrowed asset back, failures are logged
func (im *impl) moveCustody(c ctx.Ctx, id domain.AssetId, to domain.Address) {
	if err := im.registry.TransferCustody(c, im.address, id, im.address, to); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id, "to": to}).Error("registry.TransferCustody compensation failed")
	}
}

// pay pushes amount with a bounded stipend. A failed push is credited to the ledger.
func (im *impl) pay(c ctx.Ctx, to domain.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	defer im.release(amount)

	if im.sender.Send(c, im.address, to, amount) {
		return
	}
	if err := im.ledger.Credit(c, to, amount); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"payee":  to,
			"amount": amount.String(),
		}).Error("ledger.Credit failed")
		return
	}
	met.BumpSum("payment.failed", 1)
	im.emit(c, domain.EventFailedPayment, to.ToLowerStr(), amount.String())
}

func (im *impl) reserve(amount *big.Int) {
	if amount == nil {
		return
	}
	im.inflight.Add(im.inflight, amount)
}

func (im *impl) release(amount *big.Int) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.inflight.Sub(im.inflight, amount)
}

// emit logs failures, the state change is already committed
func (im *impl) emit(c ctx.Ctx, name domain.EventName, args ...string) {
	if err := im.emitter.Emit(c, name, args...); err != nil {
		c.WithFields(log.Fields{"err": err, "event": name}).Warn("emit failed")
	}
}

func (im *impl) WithdrawUnclaimed(c ctx.Ctx, caller, to domain.Address) (*big.Int, error) {
	defer met.BumpTime("withdrawUnclaimed.time").End()
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return nil, err
	}
	if !im.access.HasRole(c, caller, access.RoleAdmin) {
		return nil, domain.ErrNotAdmin
	}
	if !im.access.Paused(c) {
		return nil, domain.ErrNotPaused
	}
	if !atomic.CompareAndSwapInt32(&im.withdrawing, 0, 1) {
		return nil, domain.ErrWithdrawInProgress
	}
	defer atomic.StoreInt32(&im.withdrawing, 0)

	im.mu.Lock()
	amount, err := im.unclaimedLocked(c)
	if err == nil && amount.Sign() > 0 {
		im.reserve(amount)
	}
	im.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return new(big.Int), nil
	}
	defer im.release(amount)

	if err := im.sender.SendExact(c, im.address, to, amount); err != nil {
		return nil, err
	}
	c.WithFields(log.Fields{"to": to, "amount": amount.String()}).Info("unclaimed value withdrawn")
	return amount, nil
}

// unclaimedLocked is the engine balance minus open escrow, pending entries and in-flight pushes
func (im *impl) unclaimedLocked(c ctx.Ctx) (*big.Int, error) {
	balance, err := im.network.BalanceOf(c, im.address)
	if err != nil {
		c.WithField("err", err).Error("network.BalanceOf failed")
		return nil, err
	}
	pending, err := im.ledger.Total(c)
	if err != nil {
		c.WithField("err", err).Error("ledger.Total failed")
		return nil, err
	}
	auctions, err := im.repo.FindAll(c)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAll failed")
		return nil, err
	}

	res := balance.Sub(balance, pending)
	res.Sub(res, im.inflight)
	for _, a := range auctions {
		res.Sub(res, a.Escrow())
	}
	return res, nil
}

func (im *impl) SetAssetRoyalty(c ctx.Ctx, caller domain.Address, id domain.AssetId, receiver domain.Address, bps uint16) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}
	owner, err := im.registry.OwnerOf(c, id)
	if err != nil {
		return err
	}
	if !caller.Equals(owner) && !im.access.HasRole(c, caller, access.RoleAdmin) {
		return domain.ErrNotSellerOrAdmin
	}
	return im.registry.SetRoyalty(c, id, receiver, bps)
}

func (im *impl) GetAuction(c ctx.Ctx, id domain.AssetId) (*auction.Auction, error) {
	return im.findOpen(c, id, domain.ErrNoSuchAuction)
}

func (im *impl) GetLastBid(c ctx.Ctx, id domain.AssetId) (*big.Int, error) {
	a, err := im.findOpen(c, id, domain.ErrNoSuchAuction)
	if err != nil {
		return nil, err
	}
	return a.Escrow(), nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...auction.FindAllOptionsFunc) ([]auction.Auction, error) {
	return im.repo.FindAll(c, opts...)
}

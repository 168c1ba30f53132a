package usecase

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/account"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/service/network"
	accessUsecase "github.com/x-xyz/auctionhouse/stores/access/usecase"
	accountRepo "github.com/x-xyz/auctionhouse/stores/account/repository"
	"github.com/x-xyz/auctionhouse/stores/auction/repository"
	eventRepo "github.com/x-xyz/auctionhouse/stores/event/repository"
	ledgerRepo "github.com/x-xyz/auctionhouse/stores/ledger/repository"
	ledgerUsecase "github.com/x-xyz/auctionhouse/stores/ledger/usecase"
	paymentUsecase "github.com/x-xyz/auctionhouse/stores/payment/usecase"
	registryRepo "github.com/x-xyz/auctionhouse/stores/registry/repository"
	registryUsecase "github.com/x-xyz/auctionhouse/stores/registry/usecase"
)

const (
	engine   = domain.Address("0xe000000000000000000000000000000000000001")
	treasury = domain.Address("0x7000000000000000000000000000000000000002")
	admin    = domain.Address("0xad00000000000000000000000000000000000003")
	author   = domain.Address("0xa000000000000000000000000000000000000004")
	bidder1  = domain.Address("0xb100000000000000000000000000000000000005")
	bidder2  = domain.Address("0xb200000000000000000000000000000000000006")
	stranger = domain.Address("0xc000000000000000000000000000000000000007")

	asset = domain.AssetId("0")
	other = domain.AssetId("1")

	duration = 360 * time.Second
	feeBps   = 2000
)

var errRejected = errors.New("rejected")

type auctionSuite struct {
	suite.Suite
	ctx      ctx.Ctx
	now      time.Time
	accounts account.Repo
	net      domain.Network
	access   access.Control
	registry registry.Registry
	ledger   ledger.Ledger
	events   domain.EventRepo
	im       auction.UseCase
}

// reentrantSender pushes with unlimited gas so receivers can call back into the engine
type reentrantSender struct {
	domain.Sender
	net domain.Network
}

func (r reentrantSender) Send(c ctx.Ctx, from, to domain.Address, amount *big.Int) bool {
	return r.net.Transfer(c, from, to, amount, gas.Unlimited) == nil
}

func TestAuction(t *testing.T) {
	suite.Run(t, new(auctionSuite))
}

func (s *auctionSuite) setup(stipend uint64) {
	s.ctx = ctx.Background()
	s.now = time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	s.accounts = accountRepo.NewMemory()
	for _, b := range []domain.Address{bidder1, bidder2} {
		s.Require().NoError(s.accounts.Credit(s.ctx, b, big.NewInt(100)))
	}
	s.net = network.New(&network.Config{Accounts: s.accounts})
	sender := paymentUsecase.New(&paymentUsecase.Config{Network: s.net, Stipend: stipend})
	if stipend == gas.Unlimited {
		sender = reentrantSender{Sender: sender, net: s.net}
	}
	s.events = eventRepo.NewMemory()
	s.access = accessUsecase.New(&accessUsecase.Config{
		Address: engine,
		Admins:  []domain.Address{admin},
		Minters: []domain.Address{author},
		Sink:    s.events,
	})
	s.registry = registryUsecase.New(&registryUsecase.Config{
		Repo:      registryRepo.NewMemory(),
		Access:    s.access,
		Operators: []domain.Address{engine},
	})
	s.ledger = ledgerUsecase.New(&ledgerUsecase.Config{
		Holder: engine,
		Repo:   ledgerRepo.NewMemory(),
		Sender: sender,
		Access: s.access,
	})

	im, err := New(&Config{
		Address:  engine,
		Treasury: treasury,
		FeeBps:   feeBps,
		Repo:     repository.NewMemory(),
		Registry: s.registry,
		Network:  s.net,
		Sender:   sender,
		Ledger:   s.ledger,
		Access:   s.access,
		Sink:     s.events,
	}, WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	s.im = im

	for range []domain.AssetId{asset, other} {
		_, err := s.registry.Mint(s.ctx, author, author, registry.MintOptions{})
		s.Require().NoError(err)
	}
}

func (s *auctionSuite) SetupTest() {
	s.setup(0)
}

func (s *auctionSuite) balance(addr domain.Address) int64 {
	b, err := s.net.BalanceOf(s.ctx, addr)
	s.Require().NoError(err)
	return b.Int64()
}

func (s *auctionSuite) owner(id domain.AssetId) domain.Address {
	o, err := s.registry.OwnerOf(s.ctx, id)
	s.Require().NoError(err)
	return o
}

func (s *auctionSuite) create(id domain.AssetId, startingPrice, endingPrice int64) {
	s.Require().NoError(s.im.CreateAuction(s.ctx, author, id, big.NewInt(startingPrice), big.NewInt(endingPrice), duration))
}

func (s *auctionSuite) bid(bidder domain.Address, amount int64) error {
	return s.im.Bid(s.ctx, bidder, asset, big.NewInt(amount))
}

func (s *auctionSuite) args(name domain.EventName) [][]string {
	events, err := s.events.FindAll(s.ctx, domain.EventWithName(name))
	s.Require().NoError(err)
	res := [][]string{}
	for _, e := range events {
		res = append(res, e.Args)
	}
	return res
}

func (s *auctionSuite) rejectPayments(addr domain.Address) {
	s.net.Register(addr, domain.ReceiverFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		return errRejected
	}))
}

func (s *auctionSuite) TestFeeTooHigh() {
	_, err := New(&Config{FeeBps: 10001})
	s.ErrorIs(err, domain.ErrFeeTooHigh)
	s.ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *auctionSuite) TestCreateAuction() {
	s.create(asset, 1, 10)

	s.Equal(engine, s.owner(asset))
	a, err := s.im.GetAuction(s.ctx, asset)
	s.Require().NoError(err)
	s.Equal(author, a.Seller)
	s.Equal(s.now, a.CreatedAt)
	s.False(a.HasBid())
	s.Equal([][]string{{"0", "1", "10", "360"}}, s.args(domain.EventAuctionCreated))

	err = s.im.CreateAuction(s.ctx, author, asset, big.NewInt(1), big.NewInt(10), duration)
	s.ErrorIs(err, domain.ErrAuctionAlreadyRunning)
	s.ErrorIs(err, domain.ErrInvalidState)

	err = s.im.CreateAuction(s.ctx, stranger, other, big.NewInt(1), big.NewInt(10), duration)
	s.ErrorIs(err, domain.ErrNotSellerOrAdmin)
	s.ErrorIs(err, domain.ErrNotAuthorized)

	err = s.im.CreateAuction(s.ctx, author, "42", big.NewInt(1), big.NewInt(10), duration)
	s.ErrorIs(err, domain.ErrNoSuchAsset)

	// administrators list on the owner's behalf
	s.Require().NoError(s.im.CreateAuction(s.ctx, admin, other, big.NewInt(1), big.NewInt(20), time.Hour))
	a, err = s.im.GetAuction(s.ctx, other)
	s.Require().NoError(err)
	s.Equal(author, a.Seller)
}

func (s *auctionSuite) TestCreateAuctionValidation() {
	cases := []struct {
		desc          string
		startingPrice *big.Int
		endingPrice   *big.Int
		duration      time.Duration
		err           error
	}{
		{"zero starting price", big.NewInt(0), big.NewInt(10), duration, domain.ErrZeroStartingPrice},
		{"ending below starting", big.NewInt(5), big.NewInt(4), duration, domain.ErrInvalidPriceRange},
		{"zero duration", big.NewInt(1), big.NewInt(10), 0, domain.ErrInvalidDuration},
	}
	for _, c := range cases {
		err := s.im.CreateAuction(s.ctx, author, asset, c.startingPrice, c.endingPrice, c.duration)
		s.ErrorIs(err, c.err, c.desc)
		s.ErrorIs(err, domain.ErrInvalidAmount, c.desc)
	}
	s.Equal(author, s.owner(asset))
}

func (s *auctionSuite) TestBid() {
	s.create(asset, 2, 10)

	s.ErrorIs(s.bid(bidder1, 1), domain.ErrBidBelowMinPrice)
	s.Require().NoError(s.bid(bidder1, 7))
	s.Equal(int64(93), s.balance(bidder1))
	s.Equal(int64(7), s.balance(engine))

	s.ErrorIs(s.bid(bidder2, 7), domain.ErrBidBelowLastBid)
	s.Require().NoError(s.bid(bidder2, 9))
	s.Equal(int64(100), s.balance(bidder1))
	s.Equal(int64(91), s.balance(bidder2))
	s.Equal(int64(9), s.balance(engine))

	last, err := s.im.GetLastBid(s.ctx, asset)
	s.Require().NoError(err)
	s.Equal(int64(9), last.Int64())
	s.Equal([][]string{
		{"0", "7", bidder1.ToLowerStr()},
		{"0", "9", bidder2.ToLowerStr()},
	}, s.args(domain.EventAuctionBid))

	s.ErrorIs(s.im.Bid(s.ctx, bidder1, other, big.NewInt(5)), domain.ErrNoSuchAuction)
	s.ErrorIs(s.bid(stranger, 50), domain.ErrInsufficientBalance)

	s.now = s.now.Add(duration)
	s.ErrorIs(s.bid(bidder1, 10), domain.ErrAuctionNotOpen)
}

func (s *auctionSuite) TestBidExtendsDeadline() {
	s.create(asset, 1, 10)

	s.now = s.now.Add(duration - time.Second)
	s.Require().NoError(s.bid(bidder1, 2))
	s.now = s.now.Add(duration - time.Second)
	s.Require().NoError(s.bid(bidder2, 3))
	s.ErrorIs(s.im.FinishAuction(s.ctx, stranger, asset), domain.ErrNotYetEndable)
}

func (s *auctionSuite) TestBidAboveEndingPrice() {
	s.create(asset, 1, 10)

	s.Require().NoError(s.bid(bidder1, 15))
	s.Equal(int64(90), s.balance(bidder1))
	s.Equal(int64(10), s.balance(engine))
	s.Equal([][]string{{"0", "10", bidder1.ToLowerStr()}}, s.args(domain.EventAuctionBid))

	s.ErrorIs(s.bid(bidder2, 20), domain.ErrEndingPriceReached)

	// reaching the ending price makes it endable right away
	s.Require().NoError(s.im.FinishAuction(s.ctx, stranger, asset))
	s.Equal(bidder1, s.owner(asset))
}

func (s *auctionSuite) TestRejectedRefundIsCredited() {
	s.create(asset, 1, 10)
	s.rejectPayments(bidder1)

	s.Require().NoError(s.bid(bidder1, 5))
	s.Require().NoError(s.bid(bidder2, 7))

	s.Equal(int64(95), s.balance(bidder1))
	s.Equal(int64(12), s.balance(engine))
	pending, err := s.ledger.BalanceOf(s.ctx, bidder1)
	s.Require().NoError(err)
	s.Equal(int64(5), pending.Int64())
	s.Equal([][]string{{bidder1.ToLowerStr(), "5"}}, s.args(domain.EventFailedPayment))

	// a payee that keeps rejecting keeps its balance
	got, err := s.ledger.Withdraw(s.ctx, bidder1)
	s.Require().NoError(err)
	s.Equal(int64(0), got.Int64())

	s.net.Register(bidder1, nil)
	got, err = s.ledger.Withdraw(s.ctx, bidder1)
	s.Require().NoError(err)
	s.Equal(int64(5), got.Int64())
	s.Equal(int64(100), s.balance(bidder1))
}

func (s *auctionSuite) TestRejectedExcessIsCredited() {
	s.create(asset, 1, 10)
	s.rejectPayments(bidder1)

	s.Require().NoError(s.bid(bidder1, 12))
	pending, err := s.ledger.BalanceOf(s.ctx, bidder1)
	s.Require().NoError(err)
	s.Equal(int64(2), pending.Int64())
	s.Equal(int64(12), s.balance(engine))
}

func (s *auctionSuite) TestStipendBlocksReentry() {
	s.create(asset, 1, 10)

	var reentered error
	s.net.Register(bidder1, domain.ReceiverFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		reentered = s.im.Bid(c, bidder1, asset, big.NewInt(9))
		return nil
	}))

	s.Require().NoError(s.bid(bidder1, 5))
	s.Require().NoError(s.bid(bidder2, 7))
	s.ErrorIs(reentered, gas.ErrOutOfGas)
	s.Equal(int64(100), s.balance(bidder1))

	a, err := s.im.GetAuction(s.ctx, asset)
	s.Require().NoError(err)
	s.Equal(bidder2, a.LastBidder)
}

func (s *auctionSuite) TestOversizedStipendKeepsRefunds() {
	s.setup(1000000)
	s.create(asset, 1, 10)

	var reentered error
	s.net.Register(bidder1, domain.ReceiverFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		reentered = s.im.Bid(c, bidder1, asset, big.NewInt(8))
		return errRejected
	}))

	s.Require().NoError(s.bid(bidder1, 5))
	s.Require().NoError(s.bid(bidder2, 7))
	s.ErrorIs(reentered, gas.ErrOutOfGas)

	a, err := s.im.GetAuction(s.ctx, asset)
	s.Require().NoError(err)
	s.Equal(bidder2, a.LastBidder)
	s.Equal(int64(7), a.LastBidAmount.Int64())

	pending, err := s.ledger.BalanceOf(s.ctx, bidder1)
	s.Require().NoError(err)
	s.Equal(int64(5), pending.Int64())
	s.Equal(int64(95), s.balance(bidder1))
	s.Equal(int64(93), s.balance(bidder2))
	s.Equal(int64(12), s.balance(engine))
}

func (s *auctionSuite) TestReentrantBidSeesCommittedState() {
	s.setup(gas.Unlimited)
	s.create(asset, 1, 10)

	reentered := false
	s.net.Register(bidder1, domain.ReceiverFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		if reentered {
			return nil
		}
		reentered = true
		return s.im.Bid(c, bidder1, asset, big.NewInt(8))
	}))

	s.Require().NoError(s.bid(bidder1, 5))
	s.Require().NoError(s.bid(bidder2, 7))
	s.True(reentered)

	a, err := s.im.GetAuction(s.ctx, asset)
	s.Require().NoError(err)
	s.Equal(bidder1, a.LastBidder)
	s.Equal(int64(8), a.LastBidAmount.Int64())

	s.Equal(int64(92), s.balance(bidder1))
	s.Equal(int64(100), s.balance(bidder2))
	s.Equal(int64(8), s.balance(engine))
}

func (s *auctionSuite) TestFinishAuction() {
	s.create(asset, 1, 10)
	s.Require().NoError(s.bid(bidder1, 7))
	s.Require().NoError(s.bid(bidder2, 9))

	s.ErrorIs(s.im.FinishAuction(s.ctx, stranger, asset), domain.ErrNotYetEndable)
	s.ErrorIs(s.im.FinishAuction(s.ctx, stranger, other), domain.ErrNoSuchAuction)

	s.now = s.now.Add(duration)
	s.Require().NoError(s.im.FinishAuction(s.ctx, stranger, asset))

	s.Equal(bidder2, s.owner(asset))
	s.Equal(int64(1), s.balance(treasury))
	s.Equal(int64(8), s.balance(author))
	s.Equal(int64(0), s.balance(engine))
	s.Equal([][]string{{"0", "9", bidder2.ToLowerStr()}}, s.args(domain.EventAuctionFinish))

	_, err := s.im.GetAuction(s.ctx, asset)
	s.ErrorIs(err, domain.ErrNoSuchAuction)
	s.ErrorIs(s.im.FinishAuction(s.ctx, stranger, asset), domain.ErrNoSuchAuction)
}

func (s *auctionSuite) TestFinishWithoutBids() {
	s.create(asset, 1, 10)
	s.now = s.now.Add(duration)

	s.Require().NoError(s.im.FinishAuction(s.ctx, stranger, asset))
	s.Equal(author, s.owner(asset))
	s.Equal([][]string{{"0", "0", author.ToLowerStr()}}, s.args(domain.EventAuctionFinish))

	// the asset can be listed again
	s.create(asset, 1, 10)
}

func (s *auctionSuite) TestFinishWithRejectingSeller() {
	s.create(asset, 1, 10)
	s.Require().NoError(s.bid(bidder1, 10))
	s.rejectPayments(author)

	s.Require().NoError(s.im.FinishAuction(s.ctx, stranger, asset))
	s.Equal(int64(2), s.balance(treasury))
	s.Equal(int64(8), s.balance(engine))
	pending, err := s.ledger.BalanceOf(s.ctx, author)
	s.Require().NoError(err)
	s.Equal(int64(8), pending.Int64())
}

func (s *auctionSuite) TestCancelAuction() {
	s.create(asset, 1, 10)
	s.Require().NoError(s.bid(bidder1, 7))

	s.ErrorIs(s.im.CancelAuction(s.ctx, stranger, asset), domain.ErrNotSeller)
	s.ErrorIs(s.im.CancelAuction(s.ctx, author, other), domain.ErrAuctionNotOpen)

	s.Require().NoError(s.im.CancelAuction(s.ctx, author, asset))
	s.Equal(author, s.owner(asset))
	s.Equal(int64(100), s.balance(bidder1))
	s.Equal(int64(0), s.balance(engine))
	s.Equal([][]string{{"0"}}, s.args(domain.EventAuctionCancelled))

	s.ErrorIs(s.im.CancelAuction(s.ctx, author, asset), domain.ErrAuctionNotOpen)
}

func (s *auctionSuite) TestCancelAfterDeadline() {
	s.create(asset, 1, 10)
	s.now = s.now.Add(duration)
	s.ErrorIs(s.im.CancelAuction(s.ctx, author, asset), domain.ErrAuctionNotOpen)
}

func (s *auctionSuite) TestPause() {
	s.create(asset, 1, 10)
	s.Require().NoError(s.bid(bidder1, 7))

	s.ErrorIs(s.im.CancelAuctionWhenPaused(s.ctx, admin, asset), domain.ErrNotPaused)
	s.ErrorIs(s.im.Pause(s.ctx, stranger), domain.ErrNotAdmin)
	s.Require().NoError(s.im.Pause(s.ctx, admin))
	s.True(s.im.Paused(s.ctx))
	s.Equal([][]string{{admin.ToLowerStr()}}, s.args(domain.EventPaused))

	s.ErrorIs(s.im.CreateAuction(s.ctx, author, other, big.NewInt(1), big.NewInt(2), duration), domain.ErrPaused)
	s.ErrorIs(s.bid(bidder2, 9), domain.ErrPaused)
	s.ErrorIs(s.im.CancelAuction(s.ctx, author, asset), domain.ErrPaused)
	s.ErrorIs(s.im.FinishAuction(s.ctx, stranger, asset), domain.ErrPaused)

	s.ErrorIs(s.im.CancelAuctionWhenPaused(s.ctx, author, asset), domain.ErrNotAdmin)
	s.ErrorIs(s.im.CancelAuctionWhenPaused(s.ctx, admin, other), domain.ErrNoSuchAuction)
	s.Require().NoError(s.im.CancelAuctionWhenPaused(s.ctx, admin, asset))
	s.Equal(author, s.owner(asset))
	s.Equal(int64(100), s.balance(bidder1))
	s.Equal([][]string{{"0"}}, s.args(domain.EventAuctionCancelled))

	s.Require().NoError(s.im.Unpause(s.ctx, admin))
	s.ErrorIs(s.im.Unpause(s.ctx, admin), domain.ErrNotPaused)
	s.create(asset, 1, 10)
}

func (s *auctionSuite) TestWithdrawUnclaimed() {
	s.create(asset, 1, 10)
	s.rejectPayments(bidder1)
	s.Require().NoError(s.bid(bidder1, 5))
	s.Require().NoError(s.bid(bidder2, 7))
	s.Require().NoError(s.accounts.Credit(s.ctx, engine, big.NewInt(30)))

	_, err := s.im.WithdrawUnclaimed(s.ctx, stranger, stranger)
	s.ErrorIs(err, domain.ErrNotAdmin)

	_, err = s.im.WithdrawUnclaimed(s.ctx, admin, treasury)
	s.ErrorIs(err, domain.ErrNotPaused)
	s.Equal(int64(0), s.balance(treasury))

	s.Require().NoError(s.im.Pause(s.ctx, admin))
	got, err := s.im.WithdrawUnclaimed(s.ctx, admin, treasury)
	s.Require().NoError(err)
	s.Equal(int64(30), got.Int64())
	s.Equal(int64(30), s.balance(treasury))
	s.Equal(int64(12), s.balance(engine))

	got, err = s.im.WithdrawUnclaimed(s.ctx, admin, treasury)
	s.Require().NoError(err)
	s.Equal(int64(0), got.Int64())
}

func (s *auctionSuite) TestSetAssetRoyalty() {
	s.ErrorIs(s.im.SetAssetRoyalty(s.ctx, stranger, asset, author, 500), domain.ErrNotSellerOrAdmin)
	s.ErrorIs(s.im.SetAssetRoyalty(s.ctx, author, asset, author, 10001), domain.ErrRoyaltyTooHigh)
	s.Require().NoError(s.im.SetAssetRoyalty(s.ctx, author, asset, author, 500))

	receiver, amount, err := s.registry.RoyaltyInfo(s.ctx, asset, big.NewInt(1000))
	s.Require().NoError(err)
	s.Equal(author, receiver)
	s.Equal(int64(50), amount.Int64())
}

func (s *auctionSuite) TestFindAll() {
	s.create(asset, 1, 10)
	s.create(other, 1, 10)
	s.Require().NoError(s.bid(bidder1, 3))

	all, err := s.im.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	byBidder, err := s.im.FindAll(s.ctx, auction.WithLastBidder(bidder1))
	s.Require().NoError(err)
	s.Require().Len(byBidder, 1)
	s.Equal(asset, byBidder[0].AssetId)
}

package auction

import (
	"math/big"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Auction is an open English auction over one asset
type Auction struct {
	AssetId       domain.AssetId
	Seller        domain.Address
	StartingPrice *big.Int
	EndingPrice   *big.Int
	Duration      time.Duration
	CreatedAt     time.Time
	// LastBidTime is zero before any bid
	LastBidTime   time.Time
	LastBidAmount *big.Int
	LastBidder    domain.Address
}

func (a *Auction) HasBid() bool {
	return !a.LastBidder.IsEmpty()
}

// Deadline is duration after the last bid, or after creation when there is none
func (a *Auction) Deadline() time.Time {
	if a.HasBid() {
		return a.LastBidTime.Add(a.Duration)
	}
	return a.CreatedAt.Add(a.Duration)
}

func (a *Auction) Expired(now time.Time) bool {
	return !now.Before(a.Deadline())
}

func (a *Auction) EndingPriceReached() bool {
	return a.HasBid() && a.LastBidAmount.Cmp(a.EndingPrice) == 0
}

// Endable reports whether anyone may finish the auction
func (a *Auction) Endable(now time.Time) bool {
	return a.Expired(now) || a.EndingPriceReached()
}

// Escrow is the value the engine holds for this auction
func (a *Auction) Escrow() *big.Int {
	if !a.HasBid() {
		return new(big.Int)
	}
	return domain.CopyAmount(a.LastBidAmount)
}

func (a *Auction) Clone() *Auction {
	c := *a
	c.StartingPrice = domain.CopyAmount(a.StartingPrice)
	c.EndingPrice = domain.CopyAmount(a.EndingPrice)
	c.LastBidAmount = domain.CopyAmount(a.LastBidAmount)
	return &c
}

type FindAllOptions struct {
	Seller     *domain.Address `bson:"seller,omitempty"`
	LastBidder *domain.Address `bson:"lastBidder,omitempty"`
	Offset     *int64          `bson:"-"`
	Limit      *int64          `bson:"-"`
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		s := seller.ToLower()
		options.Seller = &s
		return nil
	}
}

func WithLastBidder(bidder domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		b := bidder.ToLower()
		options.LastBidder = &b
		return nil
	}
}

func WithPagination(offset, limit int64) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

// Repo holds open auctions only
type Repo interface {
	// FindOne returns domain.ErrNotFound when no auction is open for id
	FindOne(ctx ctx.Ctx, id domain.AssetId) (*Auction, error)
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]Auction, error)
	Insert(ctx ctx.Ctx, a *Auction) error
	Update(ctx ctx.Ctx, a *Auction) error
	Remove(ctx ctx.Ctx, id domain.AssetId) error
}

type UseCase interface {
	CreateAuction(ctx ctx.Ctx, caller domain.Address, id domain.AssetId, startingPrice, endingPrice *big.Int, duration time.Duration) error
	Bid(ctx ctx.Ctx, bidder domain.Address, id domain.AssetId, amount *big.Int) error
	CancelAuction(ctx ctx.Ctx, caller domain.Address, id domain.AssetId) error
	CancelAuctionWhenPaused(ctx ctx.Ctx, caller domain.Address, id domain.AssetId) error
	FinishAuction(ctx ctx.Ctx, caller domain.Address, id domain.AssetId) error

	Pause(ctx ctx.Ctx, caller domain.Address) error
	Unpause(ctx ctx.Ctx, caller domain.Address) error
	Paused(ctx ctx.Ctx) bool
	// WithdrawUnclaimed sends the balance not owed to anyone to `to`, only while paused
	WithdrawUnclaimed(ctx ctx.Ctx, caller, to domain.Address) (*big.Int, error)
	SetAssetRoyalty(ctx ctx.Ctx, caller domain.Address, id domain.AssetId, receiver domain.Address, bps uint16) error

	// GetAuction returns domain.ErrNoSuchAuction when absent
	GetAuction(ctx ctx.Ctx, id domain.AssetId) (*Auction, error)
	GetLastBid(ctx ctx.Ctx, id domain.AssetId) (*big.Int, error)
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]Auction, error)

	Address() domain.Address
	FeeBps() uint16
	Treasury() domain.Address
}

package registry

import (
	"math/big"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Asset is a unique asset and its custody
type Asset struct {
	Id              domain.AssetId `json:"id" bson:"_id"`
	Owner           domain.Address `json:"owner" bson:"owner"`
	Approved        domain.Address `json:"approved,omitempty" bson:"approved,omitempty"`
	Author          domain.Address `json:"author" bson:"author"`
	RoyaltyReceiver domain.Address `json:"royaltyReceiver,omitempty" bson:"royaltyReceiver,omitempty"`
	RoyaltyBps      uint16         `json:"royaltyBps" bson:"royaltyBps"`
	Imported        bool           `json:"imported" bson:"imported"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type Repo interface {
	FindOne(ctx ctx.Ctx, id domain.AssetId) (*Asset, error)
	Insert(ctx ctx.Ctx, a *Asset) error
	Update(ctx ctx.Ctx, a *Asset) error
	Count(ctx ctx.Ctx) (int64, error)
}

// MintOptions configures a mint
type MintOptions struct {
	RoyaltyBps uint16
	// WithSplitter deploys a splitter between the author and the treasury as royalty receiver
	WithSplitter bool
}

type Registry interface {
	Get(ctx ctx.Ctx, id domain.AssetId) (*Asset, error)
	OwnerOf(ctx ctx.Ctx, id domain.AssetId) (domain.Address, error)
	// TransferCustody moves the asset. operator must be the owner, the approved address or a global operator.
	TransferCustody(ctx ctx.Ctx, operator domain.Address, id domain.AssetId, from, to domain.Address) error
	Approve(ctx ctx.Ctx, caller domain.Address, id domain.AssetId, operator domain.Address) error
	SetRoyalty(ctx ctx.Ctx, id domain.AssetId, receiver domain.Address, bps uint16) error
	// RoyaltyInfo returns zero values when no royalty is set
	RoyaltyInfo(ctx ctx.Ctx, id domain.AssetId, salePrice *big.Int) (domain.Address, *big.Int, error)
	Mint(ctx ctx.Ctx, caller, to domain.Address, opts MintOptions) (*Asset, error)
	// Import registers an asset minted elsewhere under the caller
	Import(ctx ctx.Ctx, caller domain.Address, id domain.AssetId) (*Asset, error)
}

// OwnershipVerifier answers who owns a token outside this registry
type OwnershipVerifier interface {
	OwnerOf(ctx ctx.Ctx, id domain.AssetId) (domain.Address, error)
}

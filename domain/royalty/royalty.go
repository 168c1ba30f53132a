package royalty

import (
	"math/big"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Record is the persisted identity of a deployed splitter
type Record struct {
	Address     domain.Address `json:"address" bson:"_id"`
	PayeeA      domain.Address `json:"payeeA" bson:"payeeA"`
	PayeeB      domain.Address `json:"payeeB" bson:"payeeB"`
	Initialized bool           `json:"initialized" bson:"initialized"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}

type Repo interface {
	FindOne(ctx ctx.Ctx, addr domain.Address) (*Record, error)
	FindAll(ctx ctx.Ctx) ([]Record, error)
	Upsert(ctx ctx.Ctx, r *Record) error
	Count(ctx ctx.Ctx) (int64, error)
}

// Splitter routes every payment it receives 50/50 to two fixed payees
type Splitter interface {
	domain.Receiver

	Address() domain.Address
	// Initialize fails with domain.ErrAlreadyInitialized on the second call
	Initialize(ctx ctx.Ctx, payeeA, payeeB domain.Address) error
	Payees(ctx ctx.Ctx) (domain.Address, domain.Address, error)
	GetRoyalties(ctx ctx.Ctx, caller domain.Address) error
	GetRoyaltiesToken(ctx ctx.Ctx, caller domain.Address, token domain.Address) error
	ShowPendingRoyalties(ctx ctx.Ctx) (*big.Int, error)
	Withdraw(ctx ctx.Ctx, payee domain.Address) (*big.Int, error)
}

type Factory interface {
	// Deploy creates and initializes a splitter at a fresh address
	Deploy(ctx ctx.Ctx, payeeA, payeeB domain.Address) (Splitter, error)
	Get(ctx ctx.Ctx, addr domain.Address) (Splitter, error)
	FindAll(ctx ctx.Ctx) ([]Record, error)
	// Load restores the splitters persisted in the repo
	Load(ctx ctx.Ctx) error
}

package usecase

import (
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/domain/royalty"
)

type Config struct {
	Repo   registry.Repo
	Access access.Control
	// Operators may move any asset, e.g. the auction engine holding custody
	Operators []domain.Address
	// Splitters and Treasury are required for MintOptions.WithSplitter
	Splitters royalty.Factory
	Treasury  domain.Address
	// MintApproved is approved on every minted asset, usually the auction engine
	MintApproved domain.Address
	// Verifier checks on chain ownership on Import, nil trusts the caller
	Verifier registry.OwnershipVerifier
}

type impl struct {
	// serializes read-modify-write on assets
	mu sync.Mutex

	repo      registry.Repo
	access    access.Control
	operators map[domain.Address]bool
	splitters royalty.Factory
	treasury  domain.Address
	approved  domain.Address
	verifier  registry.OwnershipVerifier
}

func New(cfg *Config) registry.Registry {
	operators := make(map[domain.Address]bool)
	for _, o := range cfg.Operators {
		operators[o.ToLower()] = true
	}
	return &impl{
		repo:      cfg.Repo,
		access:    cfg.Access,
		operators: operators,
		splitters: cfg.Splitters,
		treasury:  cfg.Treasury.ToLower(),
		approved:  cfg.MintApproved.ToLower(),
		verifier:  cfg.Verifier,
	}
}

func (im *impl) Get(c ctx.Ctx, id domain.AssetId) (*registry.Asset, error) {
	a, err := im.repo.FindOne(c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoSuchAsset
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.FindOne failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) OwnerOf(c ctx.Ctx, id domain.AssetId) (domain.Address, error) {
	a, err := im.Get(c, id)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

func (im *impl) TransferCustody(c ctx.Ctx, operator domain.Address, id domain.AssetId, from, to domain.Address) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	a, err := im.Get(c, id)
	if err != nil {
		return err
	}
	if !a.Owner.Equals(from) {
		return domain.ErrNotOwner
	}
	if !operator.Equals(a.Owner) && !operator.Equals(a.Approved) && !im.operators[operator.ToLower()] {
		return domain.ErrNotApproved
	}

	a.Owner = to.ToLower()
	a.Approved = domain.EmptyAddress
	a.UpdatedAt = time.Now()
	if err := im.repo.Update(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id, "from": from, "to": to}).Error("repo.Update failed")
		return err
	}
	return nil
}

func (im *impl) Approve(c ctx.Ctx, caller domain.Address, id domain.AssetId, operator domain.Address) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	a, err := im.Get(c, id)
	if err != nil {
		return err
	}
	if !a.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	a.Approved = operator.ToLower()
	a.UpdatedAt = time.Now()
	if err := im.repo.Update(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Update failed")
		return err
	}
	return nil
}

func (im *impl) SetRoyalty(c ctx.Ctx, id domain.AssetId, receiver domain.Address, bps uint16) error {
	if !domain.IsValidBps(bps) {
		return domain.ErrRoyaltyTooHigh
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	a, err := im.Get(c, id)
	if err != nil {
		return err
	}
	a.RoyaltyReceiver = receiver.ToLower()
	a.RoyaltyBps = bps
	a.UpdatedAt = time.Now()
	if err := im.repo.Update(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Update failed")
		return err
	}
	return nil
}

func (im *impl) RoyaltyInfo(c ctx.Ctx, id domain.AssetId, salePrice *big.Int) (domain.Address, *big.Int, error) {
	a, err := im.Get(c, id)
	if err != nil {
		return "", nil, err
	}
	if a.RoyaltyReceiver.IsEmpty() || a.RoyaltyBps == 0 {
		return domain.EmptyAddress, new(big.Int), nil
	}
	return a.RoyaltyReceiver, domain.MulBps(salePrice, a.RoyaltyBps), nil
}

func (im *impl) Mint(c ctx.Ctx, caller, to domain.Address, opts registry.MintOptions) (*registry.Asset, error) {
	if !im.access.HasRole(c, caller, access.RoleMinter) {
		return nil, domain.ErrNotMinter
	}
	if !domain.IsValidBps(opts.RoyaltyBps) {
		return nil, domain.ErrRoyaltyTooHigh
	}

	var receiver domain.Address
	if opts.RoyaltyBps > 0 {
		receiver = caller.ToLower()
		if opts.WithSplitter {
			if im.splitters == nil || im.treasury.IsEmpty() {
				return nil, domain.ErrBadParamInput
			}
			s, err := im.splitters.Deploy(c, caller, im.treasury)
			if err != nil {
				c.WithField("err", err).Error("splitters.Deploy failed")
				return nil, err
			}
			receiver = s.Address()
		}
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	id, err := im.nextId(c)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a := &registry.Asset{
		Id:              id,
		Owner:           to.ToLower(),
		Approved:        im.approved,
		Author:          caller.ToLower(),
		RoyaltyReceiver: receiver,
		RoyaltyBps:      opts.RoyaltyBps,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := im.repo.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Insert failed")
		return nil, err
	}
	return a, nil
}

// nextId starts at the asset count and skips ids taken by imports
func (im *impl) nextId(c ctx.Ctx) (domain.AssetId, error) {
	n, err := im.repo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("repo.Count failed")
		return "", err
	}
	for i := n; ; i++ {
		id := domain.AssetId(strconv.FormatInt(i, 10))
		if _, err := im.repo.FindOne(c, id); errors.Is(err, domain.ErrNotFound) {
			return id, nil
		} else if err != nil {
			return "", err
		}
	}
}

func (im *impl) Import(c ctx.Ctx, caller domain.Address, id domain.AssetId) (*registry.Asset, error) {
	if _, ok := new(big.Int).SetString(string(id), 10); !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	if im.verifier != nil {
		owner, err := im.verifier.OwnerOf(c, id)
		if err != nil {
			c.WithFields(log.Fields{"err": err, "id": id}).Warn("verifier.OwnerOf failed")
			return nil, err
		}
		if !owner.Equals(caller) {
			return nil, domain.ErrNotOwner
		}
	}

	now := time.Now()
	a := &registry.Asset{
		Id:        id,
		Owner:     caller.ToLower(),
		Author:    caller.ToLower(),
		Imported:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := im.repo.Insert(c, a); errors.Is(err, domain.ErrAssetExists) {
		return nil, err
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Insert failed")
		return nil, err
	}
	return a, nil
}

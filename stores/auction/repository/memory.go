package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/auction"
)

type memoryRepo struct {
	mu       sync.RWMutex
	auctions map[domain.AssetId]*auction.Auction
}

func NewMemory() auction.Repo {
	return &memoryRepo{
		auctions: make(map[domain.AssetId]*auction.Auction),
	}
}

func (im *memoryRepo) FindOne(ctx ctx.Ctx, id domain.AssetId) (*auction.Auction, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	a, ok := im.auctions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

// FindAll returns auctions oldest first
func (im *memoryRepo) FindAll(ctx ctx.Ctx, optFns ...auction.FindAllOptionsFunc) ([]auction.Auction, error) {
	opts, err := auction.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	im.mu.RLock()
	res := []auction.Auction{}
	for _, a := range im.auctions {
		if opts.Seller != nil && !a.Seller.Equals(*opts.Seller) {
			continue
		}
		if opts.LastBidder != nil && !a.LastBidder.Equals(*opts.LastBidder) {
			continue
		}
		res = append(res, *a.Clone())
	}
	im.mu.RUnlock()

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].AssetId < res[j].AssetId
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})

	if opts.Offset != nil {
		if int(*opts.Offset) >= len(res) {
			return []auction.Auction{}, nil
		}
		res = res[*opts.Offset:]
	}
	if opts.Limit != nil && *opts.Limit > 0 && int(*opts.Limit) < len(res) {
		res = res[:*opts.Limit]
	}
	return res, nil
}

func (im *memoryRepo) Insert(ctx ctx.Ctx, a *auction.Auction) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.auctions[a.AssetId]; ok {
		return domain.ErrAuctionAlreadyRunning
	}
	im.auctions[a.AssetId] = a.Clone()
	return nil
}

func (im *memoryRepo) Update(ctx ctx.Ctx, a *auction.Auction) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.auctions[a.AssetId]; !ok {
		return domain.ErrNotFound
	}
	im.auctions[a.AssetId] = a.Clone()
	return nil
}

func (im *memoryRepo) Remove(ctx ctx.Ctx, id domain.AssetId) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.auctions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(im.auctions, id)
	return nil
}

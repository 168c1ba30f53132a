package repository

import (
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/registry"
)

type memoryRepo struct {
	mu     sync.RWMutex
	assets map[domain.AssetId]registry.Asset
}

func NewMemory() registry.Repo {
	return &memoryRepo{
		assets: make(map[domain.AssetId]registry.Asset),
	}
}

func (im *memoryRepo) FindOne(ctx ctx.Ctx, id domain.AssetId) (*registry.Asset, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	a, ok := im.assets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (im *memoryRepo) Insert(ctx ctx.Ctx, a *registry.Asset) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.assets[a.Id]; ok {
		return domain.ErrAssetExists
	}
	im.assets[a.Id] = *a
	return nil
}

func (im *memoryRepo) Update(ctx ctx.Ctx, a *registry.Asset) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.assets[a.Id]; !ok {
		return domain.ErrNotFound
	}
	im.assets[a.Id] = *a
	return nil
}

func (im *memoryRepo) Count(ctx ctx.Ctx) (int64, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return int64(len(im.assets)), nil
}

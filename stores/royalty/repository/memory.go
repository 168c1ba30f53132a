package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/royalty"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records map[domain.Address]royalty.Record
}

func NewMemory() royalty.Repo {
	return &memoryRepo{
		records: make(map[domain.Address]royalty.Record),
	}
}

func (im *memoryRepo) FindOne(ctx ctx.Ctx, addr domain.Address) (*royalty.Record, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	r, ok := im.records[addr.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

// FindAll returns records in deployment order
func (im *memoryRepo) FindAll(ctx ctx.Ctx) ([]royalty.Record, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	res := make([]royalty.Record, 0, len(im.records))
	for _, r := range im.records {
		res = append(res, r)
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].Address < res[j].Address
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (im *memoryRepo) Upsert(ctx ctx.Ctx, r *royalty.Record) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	rec := *r
	rec.Address = rec.Address.ToLower()
	im.records[rec.Address] = rec
	return nil
}

func (im *memoryRepo) Count(ctx ctx.Ctx) (int64, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return int64(len(im.records)), nil
}

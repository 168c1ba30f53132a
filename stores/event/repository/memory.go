package repository

import (
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewMemory records events in emission order
func NewMemory() domain.EventRepo {
	return &memoryRepo{}
}

func (im *memoryRepo) Emit(ctx ctx.Ctx, event domain.Event) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	event.Args = append([]string(nil), event.Args...)
	im.events = append(im.events, event)
	return nil
}

func (im *memoryRepo) FindAll(ctx ctx.Ctx, optFns ...domain.EventFindAllOptionsFunc) ([]domain.Event, error) {
	opts, err := domain.GetEventFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	res := []domain.Event{}
	for _, e := range im.events {
		if opts.Name != nil && e.Name != *opts.Name {
			continue
		}
		if opts.Emitter != nil && !e.Emitter.Equals(*opts.Emitter) {
			continue
		}
		res = append(res, e)
	}
	return paginate(res, opts.Offset, opts.Limit), nil
}

func paginate(events []domain.Event, offset, limit *int) []domain.Event {
	if offset != nil {
		if *offset >= len(events) {
			return []domain.Event{}
		}
		events = events[*offset:]
	}
	if limit != nil && *limit > 0 && *limit < len(events) {
		events = events[:*limit]
	}
	return events
}

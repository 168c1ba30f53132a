package usecase

import (
	"sort"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	eventUsecase "github.com/x-xyz/auctionhouse/stores/event/usecase"
)

type Config struct {
	// Address is the component the pause events are emitted for
	Address domain.Address
	Admins  []domain.Address
	Minters []domain.Address
	Sink    domain.EventSink
}

type impl struct {
	mu      sync.RWMutex
	members map[access.Role]map[domain.Address]bool
	paused  bool
	emitter *eventUsecase.Emitter
}

func New(cfg *Config) access.Control {
	im := &impl{
		members: map[access.Role]map[domain.Address]bool{
			access.RoleAdmin:  {},
			access.RoleMinter: {},
		},
		emitter: eventUsecase.NewEmitter(cfg.Sink, cfg.Address),
	}
	for _, a := range cfg.Admins {
		im.members[access.RoleAdmin][a.ToLower()] = true
	}
	for _, a := range cfg.Minters {
		im.members[access.RoleMinter][a.ToLower()] = true
	}
	return im
}

func (im *impl) HasRole(ctx ctx.Ctx, addr domain.Address, role access.Role) bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.members[role][addr.ToLower()]
}

func (im *impl) Members(ctx ctx.Ctx, role access.Role) []domain.Address {
	im.mu.RLock()
	defer im.mu.RUnlock()
	res := []domain.Address{}
	for a := range im.members[role] {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func (im *impl) Grant(ctx ctx.Ctx, caller, addr domain.Address, role access.Role) error {
	return im.setRole(ctx, caller, addr, role, true)
}

func (im *impl) Revoke(ctx ctx.Ctx, caller, addr domain.Address, role access.Role) error {
	return im.setRole(ctx, caller, addr, role, false)
}

func (im *impl) setRole(ctx ctx.Ctx, caller, addr domain.Address, role access.Role, member bool) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if !im.members[access.RoleAdmin][caller.ToLower()] {
		return domain.ErrNotAdmin
	}
	set, ok := im.members[role]
	if !ok {
		return domain.ErrBadParamInput
	}
	if member {
		set[addr.ToLower()] = true
	} else {
		delete(set, addr.ToLower())
	}

	ctx.WithFields(log.Fields{
		"caller": caller,
		"addr":   addr,
		"role":   role,
		"member": member,
	}).Info("role updated")
	return nil
}

func (im *impl) Paused(ctx ctx.Ctx) bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.paused
}

func (im *impl) Pause(ctx ctx.Ctx, caller domain.Address) error {
	return im.setPaused(ctx, caller, true)
}

func (im *impl) Unpause(ctx ctx.Ctx, caller domain.Address) error {
	return im.setPaused(ctx, caller, false)
}

func (im *impl) setPaused(c ctx.Ctx, caller domain.Address, paused bool) error {
	if err := gas.Charge(c, gas.CostCall); err != nil {
		return err
	}

	im.mu.Lock()
	if !im.members[access.RoleAdmin][caller.ToLower()] {
		im.mu.Unlock()
		return domain.ErrNotAdmin
	}
	if im.paused == paused {
		im.mu.Unlock()
		if paused {
			return domain.ErrPaused
		}
		return domain.ErrNotPaused
	}
	im.paused = paused
	im.mu.Unlock()

	name := domain.EventUnpaused
	if paused {
		name = domain.EventPaused
	}
	if err := im.emitter.Emit(c, name, caller.ToLowerStr()); err != nil {
		c.WithFields(log.Fields{"err": err, "event": name}).Error("emitter.Emit failed")
	}
	return nil
}

package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/domain"
)

// Emitter stamps and emits the events of one component address
type Emitter struct {
	sink    domain.EventSink
	address domain.Address
	now     func() time.Time
}

func NewEmitter(sink domain.EventSink, address domain.Address) *Emitter {
	return &Emitter{
		sink:    sink,
		address: address.ToLower(),
		now:     time.Now,
	}
}

// Emit charges gas.CostEvent and hands the event to the sink. A nil sink drops the event.
func (e *Emitter) Emit(c ctx.Ctx, name domain.EventName, args ...string) error {
	if err := gas.Charge(c, gas.CostEvent); err != nil {
		return err
	}
	if e.sink == nil {
		return nil
	}
	return e.sink.Emit(c, domain.Event{
		ID:      uuid.NewString(),
		Name:    name,
		Emitter: e.address,
		Args:    args,
		CallID:  ctx.CallID(c),
		Time:    e.now().UTC(),
	})
}

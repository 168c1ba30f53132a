package domain

import (
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

type EventName string

// names and argument order are part of the observable contract
const (
	EventAuctionCreated   EventName = "AuctionCreated"
	EventAuctionBid       EventName = "AuctionBid"
	EventAuctionCancelled EventName = "AuctionCancelled"
	EventAuctionFinish    EventName = "AuctionFinish"
	EventFailedPayment    EventName = "FailedPayment"
	EventRoyaltyReceived  EventName = "RoyaltyReceived"
	EventPaused           EventName = "Paused"
	EventUnpaused         EventName = "Unpaused"
)

// Event is a notification emitted after a successful state change.
// Args holds the arguments in declaration order, amounts as decimal strings.
type Event struct {
	ID      string    `json:"id" bson:"_id"`
	Name    EventName `json:"name" bson:"name"`
	Emitter Address   `json:"emitter" bson:"emitter"`
	Args    []string  `json:"args" bson:"args"`
	CallID  string    `json:"callId,omitempty" bson:"callId,omitempty"`
	Time    time.Time `json:"time" bson:"time"`
}

// EventSink receives emitted events
type EventSink interface {
	Emit(ctx ctx.Ctx, event Event) error
}

type EventFindAllOptions struct {
	Name    *EventName `bson:"name,omitempty"`
	Emitter *Address   `bson:"emitter,omitempty"`
	Offset  *int       `bson:"-"`
	Limit   *int       `bson:"-"`
}

type EventFindAllOptionsFunc func(*EventFindAllOptions) error

func GetEventFindAllOptions(opts ...EventFindAllOptionsFunc) (EventFindAllOptions, error) {
	res := EventFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func EventWithName(name EventName) EventFindAllOptionsFunc {
	return func(o *EventFindAllOptions) error {
		o.Name = &name
		return nil
	}
}

func EventWithEmitter(emitter Address) EventFindAllOptionsFunc {
	return func(o *EventFindAllOptions) error {
		e := emitter.ToLower()
		o.Emitter = &e
		return nil
	}
}

func EventWithPagination(offset, limit int) EventFindAllOptionsFunc {
	return func(o *EventFindAllOptions) error {
		o.Offset = &offset
		o.Limit = &limit
		return nil
	}
}

// EventRepo keeps emitted events for queries
type EventRepo interface {
	EventSink
	FindAll(ctx ctx.Ctx, opts ...EventFindAllOptionsFunc) ([]Event, error)
}

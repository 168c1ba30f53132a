package repository

import (
	"go.uber.org/multierr"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

type fanout struct {
	sinks []domain.EventSink
}

// NewFanout emits to every sink, a failing sink does not stop the others
func NewFanout(sinks ...domain.EventSink) domain.EventSink {
	return &fanout{sinks}
}

func (f *fanout) Emit(ctx ctx.Ctx, event domain.Event) error {
	var err error
	for _, s := range f.sinks {
		err = multierr.Append(err, s.Emit(ctx, event))
	}
	return err
}

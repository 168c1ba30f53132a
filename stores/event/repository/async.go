package repository

import (
	"sync"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/base/metrics"
	"github.com/x-xyz/auctionhouse/domain"
)

const scheduleTimeout = 3 * time.Second

var (
	metOnce sync.Once
	met     metrics.Service
)

type async struct {
	sink domain.EventSink
	pool *goroutines.Pool
}

// NewAsync hands events to a worker pool. Delivery failures are logged, Emit only reports a full queue.
func NewAsync(sink domain.EventSink, pool *goroutines.Pool) domain.EventSink {
	metOnce.Do(func() {
		met = metrics.New("event")
	})
	return &async{sink: sink, pool: pool}
}

func (a *async) Emit(c ctx.Ctx, event domain.Event) error {
	// the caller's ctx may be gone by the time a worker runs
	detached := ctx.Ctx{Context: ctx.Background().Context, Logger: c.Logger}
	err := a.pool.ScheduleWithTimeout(scheduleTimeout, func() {
		if err := a.sink.Emit(detached, event); err != nil {
			met.BumpSum("dispatch.err", 1, "name", string(event.Name))
			detached.WithFields(log.Fields{
				"err":   err,
				"event": event,
			}).Error("sink.Emit failed")
		}
	})
	if err != nil {
		met.BumpSum("schedule.err", 1, "name", string(event.Name))
		c.WithFields(log.Fields{
			"err":   err,
			"event": event.Name,
		}).Error("failed to ScheduleWithTimeout")
		return err
	}
	return nil
}

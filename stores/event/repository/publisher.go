package repository

import (
	"encoding/json"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/service/redis"
)

type publisher struct {
	redis   redis.Service
	channel string
}

// NewPublisher publishes every event as json on a redis channel
func NewPublisher(r redis.Service, channel string) domain.EventSink {
	return &publisher{redis: r, channel: channel}
}

func (p *publisher) Emit(ctx ctx.Ctx, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		ctx.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	if _, err := p.redis.Publish(ctx, p.channel, payload); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"channel": p.channel,
			"event":   event.Name,
		}).Error("redis.Publish failed")
		return err
	}
	return nil
}

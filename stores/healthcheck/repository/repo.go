package repository

import (
	"time"

	"github.com/x-xyz/auctionhouse/base/ctx"
	hcdomain "github.com/x-xyz/auctionhouse/domain/healthcheck"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/service/query"
	"github.com/x-xyz/auctionhouse/service/redis"
)

type impl struct {
	query      query.Mongo
	redisCache redis.Service
}

// New checks whichever of mongo and redis is configured, nil ones are skipped
func New(
	query query.Mongo,
	redisCache redis.Service,
) hcdomain.HealthCheckRepo {
	return &impl{
		query:      query,
		redisCache: redisCache,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if im.query != nil {
		if err := im.query.Ping(ctx); err != nil {
			context.WithField("err", err).Error("ping mongo error")
			return err
		}
	}

	if im.redisCache != nil {
		if err := im.redisCache.Set(ctx, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
			context.WithField("err", err).Error("test redis set failed")
			return err
		}
	}
	return nil
}

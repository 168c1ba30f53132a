package usecase

import (
	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain/auction"
	hcdomain "github.com/x-xyz/auctionhouse/domain/healthcheck"
)

type impl struct {
	repo    hcdomain.HealthCheckRepo
	auction auction.UseCase
}

// New reports the storage health and whether the engine is paused
func New(repo hcdomain.HealthCheckRepo, auction auction.UseCase) hcdomain.HealthCheckUsecase {
	return &impl{
		repo:    repo,
		auction: auction,
	}
}

func (im *impl) Check(context ctx.Ctx) (*hcdomain.Status, error) {
	if err := im.repo.PingDB(context); err != nil {
		return nil, err
	}
	s := &hcdomain.Status{Healthy: "ok"}
	if im.auction != nil {
		s.Engine = im.auction.Address()
		s.Paused = im.auction.Paused(context)
	}
	return s, nil
}

package healthcheck

import (
	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

// Status is what GET /health reports
type Status struct {
	Healthy string         `json:"healthy"`
	Engine  domain.Address `json:"engine,omitempty"`
	Paused  bool           `json:"paused"`
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) (*Status, error)
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingDB(context ctx.Ctx) error
}

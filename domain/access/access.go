package access

import (
	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMinter Role = "MINTER"
)

// Control is the authorization directory and global pause switch
type Control interface {
	HasRole(ctx ctx.Ctx, addr domain.Address, role Role) bool
	Members(ctx ctx.Ctx, role Role) []domain.Address
	Grant(ctx ctx.Ctx, caller, addr domain.Address, role Role) error
	Revoke(ctx ctx.Ctx, caller, addr domain.Address, role Role) error

	Paused(ctx ctx.Ctx) bool
	Pause(ctx ctx.Ctx, caller domain.Address) error
	Unpause(ctx ctx.Ctx, caller domain.Address) error
}
